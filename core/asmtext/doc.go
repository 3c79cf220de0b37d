// Package asmtext reads and writes a minimal textual SSA assembly for
// package core's Graph, so a program can be fed into pea.Run and the result
// inspected without a real host VM. It is a development and testing
// convenience, not part of the pass's external contract (see core.
// ObjectModel et al. for that) — cmd/peaopt is its only production-code
// consumer.
//
// Grammar, one statement per line:
//
//	program  := (typedecl | block)+
//	typedecl := "type" uint ("opaque" | "attrs=" kind("," kind)* | "bigint=" int)*
//	block    := "block" name ("->" name+)? "\n" instr*
//	instr    := (dest "=")? opcode operand* attr* "\n"
//	dest     := "%r" uint ":" kind
//	operand  := "%r" uint (":" kind)?
//	attr     := key "=" value
//	kind     := "obj" | "int" | "float" | "str" | "bigint"
//
// A register's kind is declared once, at its defining instruction, or by a
// ":" kind on its first use as an operand when no instruction defines it;
// later uses just name it. Blocks are wired in declaration order if no "->"
// clause is given ("fall through" edges), otherwise exactly as named.
// Recognized attrs are type=, attr=, deopt=, comment=; a deopt index read
// from text is never synthetic. A typedecl registers an opaque record's attribute layout
// against the in-memory reference object model (core.MemObjectModel); it is
// meaningless against a real host integration's object model, which has no
// use for reading its own types back out of text.
package asmtext
