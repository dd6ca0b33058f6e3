package parser

// MaxMacroNestingDepth is the maximum depth for nested macro expansions.
// Prevents infinite recursion in macro processing.
const MaxMacroNestingDepth = 100
