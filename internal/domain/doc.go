// Package domain contains the core domain entities and value objects for
// mailforge.
//
// This package represents the innermost layer of the Clean Architecture. It
// has no dependencies on infrastructure concerns (HTTP, file system, logging)
// and contains only pure business logic.
//
// # Entities
//
//   - [Account]: A single identity to provision (address + credential)
//   - [Outcome]: The classified result of resolving one account
//   - [LedgerEntry]: The terminal record for one account, in request order
//   - [Report]: The aggregate result of one batch run
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
