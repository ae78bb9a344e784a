// Package syntax implements the typed syntax tree produced by pkg/parser:
// the discriminated node variants, the allocator contract that owns every
// node's lifetime, and the visitor dispatch that observes nodes as they
// complete during parsing.
package syntax

import "arctic.dev/arctic/pkg/token"

// Entity tags the concrete variant a Node carries. Every Node has the same
// header shape (Child/Sibling/Annotation links); Entity is what a Visitor
// switches on to recover the variant fields below.
type Entity uint8

const (
	ROOT Entity = iota

	DEFTypeDef
	DEFStruct
	DEFStructMember
	DEFVariable
	DEFContextVariable
	DEFFunction
	DEFFunctionArgument
	DEFFunctionBody
	DEFExplicitScope
	DEFAnnotation
	DEFAnnotationAttribute

	EXPValue
	EXPGetMember
	EXPCall
	EXPCallArg
	EXPVariable
	EXPExpression
	EXPAssignment
	EXPUnaryOperation
	EXPBinaryOperation
	EXPExplicitScope
	EXPCondition
	EXPBranch
	EXPLoop
)

func (e Entity) String() string {
	switch e {
	case ROOT:
		return "ROOT"
	case DEFTypeDef:
		return "DEF_TypeDef"
	case DEFStruct:
		return "DEF_Struct"
	case DEFStructMember:
		return "DEF_StructMember"
	case DEFVariable:
		return "DEF_Variable"
	case DEFContextVariable:
		return "DEF_ContextVariable"
	case DEFFunction:
		return "DEF_Function"
	case DEFFunctionArgument:
		return "DEF_FunctionArgument"
	case DEFFunctionBody:
		return "DEF_FunctionBody"
	case DEFExplicitScope:
		return "DEF_ExplicitScope"
	case DEFAnnotation:
		return "DEF_Annotation"
	case DEFAnnotationAttribute:
		return "DEF_AnnotationAttribute"
	case EXPValue:
		return "EXP_Value"
	case EXPGetMember:
		return "EXP_GetMember"
	case EXPCall:
		return "EXP_Call"
	case EXPCallArg:
		return "EXP_CallArg"
	case EXPVariable:
		return "EXP_Variable"
	case EXPExpression:
		return "EXP_Expression"
	case EXPAssignment:
		return "EXP_Assignment"
	case EXPUnaryOperation:
		return "EXP_UnaryOperation"
	case EXPBinaryOperation:
		return "EXP_BinaryOperation"
	case EXPExplicitScope:
		return "EXP_ExplicitScope"
	case EXPCondition:
		return "EXP_Condition"
	case EXPBranch:
		return "EXP_Branch"
	case EXPLoop:
		return "EXP_Loop"
	default:
		return "Unknown"
	}
}

// Node is the single concrete type every syntax entity is represented by.
// The header fields (Entity/Child/Sibling/Annotation) are shared by every
// variant per spec; the variant-specific payload lives in the Token fields
// below instead of in N incompatible struct types, so the tree
// can be one allocator-owned shape (invariant 6).
//
// Child starts the ordered list of a node's children; Sibling threads that
// list. Annotation, when non-nil, is the head of a DEF_Annotation chain
// consumed by this node (invariant 2).
type Node struct {
	Entity     Entity
	Child      *Node
	Sibling    *Node
	Annotation *Node

	// Name/Type/Value/Member/Function/Operation hold the Token payload for
	// whichever variant Entity selects; unused fields are the zero Token
	// for any given Entity. IsAlias is the one non-Token payload field
	// (DEF_TypeDef.is_alias).
	Name      token.Token
	Type      token.Token
	BaseType  token.Token
	Value     token.Token
	Member    token.Token
	Function  token.Token
	Operation token.Token
	IsAlias   bool
}

// AppendChild links 'child' as the new last element of n's child list.
func (n *Node) AppendChild(child *Node) {
	if n.Child == nil {
		n.Child = child
		return
	}
	last := n.Child
	for last.Sibling != nil {
		last = last.Sibling
	}
	last.Sibling = child
}

// AppendSibling links 'sibling' as the new last element of n's own
// sibling chain.
func (n *Node) AppendSibling(sibling *Node) {
	last := n
	for last.Sibling != nil {
		last = last.Sibling
	}
	last.Sibling = sibling
}

// Children returns an iterator over n's child list in source order.
func (n *Node) Children() func(yield func(*Node) bool) {
	return func(yield func(*Node) bool) {
		for c := n.Child; c != nil; c = c.Sibling {
			if !yield(c) {
				return
			}
		}
	}
}

// Annotations returns an iterator over n's annotation chain (the
// DEF_Annotation nodes attached to n, each with its own DEF_AnnotationAttribute
// children).
func (n *Node) Annotations() func(yield func(*Node) bool) {
	return func(yield func(*Node) bool) {
		for a := n.Annotation; a != nil; a = a.Sibling {
			if !yield(a) {
				return
			}
		}
	}
}
