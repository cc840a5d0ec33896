// Package core defines the shared language of the goadmin console.
//
// This package contains:
//   - Domain entities returned by the admin API (MenuNode, User, Role, OperationLog, API)
//   - Request bodies sent to the admin API (list filters, create/update payloads, batch deletes)
//   - The response envelope every endpoint answers with
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
