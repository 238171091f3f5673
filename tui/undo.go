// ABOUTME: Undo/redo stack manager for parameter edits
// ABOUTME: Manages configuration history with maximum stack size limit

package tui

import "genetic-lab/config"

// ParamState captures the tuned configuration for undo/redo
type ParamState struct {
	Config   config.FileConfig
	Selected int
}

// UndoManager manages undo/redo stacks with maximum size limit
type UndoManager struct {
	undoStack []ParamState
	redoStack []ParamState
	maxSize   int
}

// NewUndoManager creates a new undo manager with the specified max stack size
func NewUndoManager(maxSize int) *UndoManager {
	return &UndoManager{
		undoStack: []ParamState{},
		redoStack: []ParamState{},
		maxSize:   maxSize,
	}
}

// push appends to a stack, dropping the oldest entry beyond maxSize
func (um *UndoManager) push(stack []ParamState, state ParamState) []ParamState {
	stack = append(stack, state)
	if len(stack) > um.maxSize {
		stack = stack[1:]
	}

	return stack
}

// Push saves a new state to the undo stack
// Clears the redo stack (you can't redo after a new edit)
func (um *UndoManager) Push(state ParamState) {
	um.undoStack = um.push(um.undoStack, state)
	um.redoStack = []ParamState{}
}

// Undo restores the previous state
// Returns the state and true if undo was successful, or zero value and false if nothing to undo
func (um *UndoManager) Undo(currentState ParamState) (ParamState, bool) {
	if len(um.undoStack) == 0 {
		return ParamState{}, false
	}

	um.redoStack = um.push(um.redoStack, currentState)

	state := um.undoStack[len(um.undoStack)-1]
	um.undoStack = um.undoStack[:len(um.undoStack)-1]

	return state, true
}

// Redo restores the next state
// Returns the state and true if redo was successful, or zero value and false if nothing to redo
func (um *UndoManager) Redo(currentState ParamState) (ParamState, bool) {
	if len(um.redoStack) == 0 {
		return ParamState{}, false
	}

	um.undoStack = um.push(um.undoStack, currentState)

	state := um.redoStack[len(um.redoStack)-1]
	um.redoStack = um.redoStack[:len(um.redoStack)-1]

	return state, true
}

// UndoSize returns the number of items in the undo stack
func (um *UndoManager) UndoSize() int {
	return len(um.undoStack)
}

// RedoSize returns the number of items in the redo stack
func (um *UndoManager) RedoSize() int {
	return len(um.redoStack)
}

// Clear clears both stacks
func (um *UndoManager) Clear() {
	um.undoStack = []ParamState{}
	um.redoStack = []ParamState{}
}
