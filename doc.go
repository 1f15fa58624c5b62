// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jsonls implements the shared low-level primitives of a JSON
// language service: a lexical scanner, and the location and diagnostic
// vocabulary shared by the parser (package ast) and the validator
// (package schema).
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON that never
// fails outright: instead of stopping at the first lexical error, each
// call to Next reports the best token it can recover and, when the
// input was malformed, an accompanying ScanError code.
//
//	s := jsonls.NewScanner(input)
//	for s.Next() != jsonls.EOF {
//	   if s.ScanError() != jsonls.ErrNone {
//	      log.Printf("scan error %v at %d", s.ScanError(), s.Span().Pos)
//	   }
//	}
//
// # Diagnostics
//
// Diagnostic is the common shape produced by both the parser and the
// validator: a location, a message, a severity, an optional Code, and a
// set of Tags. ToProtocolDiagnostic converts one to the wire type a
// language server would publish.
//
// # Packages
//
//	package    | role
//	---------- | -----------------------------------------------------
//	jsonls     | scanner, location, diagnostic (this package)
//	ast        | parser, syntax tree, document, navigation (ast/cursor)
//	schema     | JSON Schema validator
package jsonls
