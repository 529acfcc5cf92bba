// Package vars implements the layered variable scope and the {{name}}
// template interpolation used for request URLs, headers and bodies.
//
// A scope is an ordered stack of variable mappings consulted
// narrowest-first: step overrides, chain context, collection environment,
// globals. Built-in generators ({{$uuid}} and friends) are dispatched
// lazily at interpolation time and never stored in the scope.
package vars
