// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error presentation: rendered markdown
// cards for well-known failure classes and an ActionableError type that
// carries operation context and fix suggestions through the CLI boundary.
package issue
