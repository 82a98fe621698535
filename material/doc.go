// Package material reads OGRE/Gazebo material scripts into a tree of items,
// resolves block inheritance, and answers path queries against the result.
//
// # Pipeline
//
// A source goes through three stages, each usable on its own:
//
//   - [Tokenize] matches the whole input against the grammar and returns
//     nested statement tokens. Any unmatched span is an [ErrGrammar].
//   - [Build] turns the tokens into [Item] values under a synthetic root.
//   - [Resolve] merges every inheriting top-level block with its bases.
//
// [File] and [ParseString] run the three stages and keep the resolved tree.
//
// # Grammar
//
// Informal EBNF:
//
//	File       → (Import NEWLINE)* Block*
//	Import     → 'import' ('*' | Ident (',' Ident)*) 'from' Source
//	Block      → Ident Blockname? Arg* (':' Blockname (',' Blockname)*)? '{' Statement* '}'
//	Statement  → Block | Property
//	Property   → Ident Value+ (NEWLINE | EOF | before '}')
//	Value      → Number | File | Ident | Blockname | String
//	Blockname  → (Ident '/')* [A-Za-z0-9_]+
//	Number     → [+-]? ([0-9]+ | [0-9]* '.' [0-9]+)
//
// Comments are // to end of line and /* ... */. Tokens are kept verbatim:
// ".3" stays ".3".
//
// # Example
//
//	material Gazebo/Grey
//	{
//	  technique
//	  {
//	    pass main
//	    {
//	      ambient .3 .3 .3 1.0
//	      diffuse .7 .7 .7 1.0
//	    }
//	  }
//	}
//
//	material Gazebo/Gray : Gazebo/Grey
//	{
//	}
//
// # Inheritance
//
// Children are matched by id: the kind alone, or kind:name when named.
// A child present only on the base is attached to the inheriting block as a
// deep copy. A child present on both is merged recursively, so the inheriting
// side always wins. Bases are resolved before the blocks that inherit from
// them; cycles fail with [ErrInheritanceCycle].
//
// # Queries
//
// A query is a '.'-separated path of segments, each a kind with optional
// predicates, evaluated from the root:
//
//	material[name=Gazebo/Grey].technique.pass.ambient
//	material[name="a.b.c"].technique.pass[name]
//
// A predicate key alone tests presence; key=value also tests the value. The
// keys are name, level, parent, and args. Only name can be absent below the
// root: a top-level item's parent is the root, whose id is "", and an item
// without arguments has args "". A '.' inside brackets or quotes does not
// split, and a backslash escapes the next character inside quotes.
package material
