// Package readme refreshes the help blocks embedded in a README.
//
// A help block is delimited by sentinel comments naming a command:
//
//	<!-- BEGIN:help mytool sync -->
//	...
//	<!-- END:help mytool sync -->
//
// Update runs "<command> --help" for every block, cleans the output and
// replaces the block body with it as a fenced bash snippet.
package readme
