// Package validation checks constructor arguments and reports failures as
// *errors.ValidationError values carrying a standard hint.
package validation
