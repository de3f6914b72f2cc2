// Package catalog handles level loading and caching from a directory of
// text level files. Levels are parsed and validated on first load and
// cached by name; a built-in minimal level serves as the fallback default
// when the directory holds nothing usable.
package catalog
