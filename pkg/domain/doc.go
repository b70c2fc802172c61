// Package domain holds the value types shared by every layer of the property
// data engine: the Address being reported on, the closed set of data Sources,
// the closed set of record Fields and the Record itself. Nothing here performs
// I/O.
package domain
