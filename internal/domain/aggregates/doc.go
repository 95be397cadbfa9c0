// Package aggregates defines the write boundaries of a course tree.
//
// A course row and each chapter subtree are separate atomic units: a failed
// chapter rolls back alone and never touches chapters committed before it.
package aggregates
