// Package testutil contains helper functions used across tests to reduce
// boilerplate when asserting over run histories. These helpers are
// intentionally minimal and avoid adding third-party dependencies. They are
// not intended for production usage.
package testutil
