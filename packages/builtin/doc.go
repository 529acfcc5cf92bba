// Package builtin implements the dynamic value generators referenced in
// templates as {{$name}} placeholders. Generators are side-effecting:
// every call produces a fresh value, nothing is cached.
package builtin
