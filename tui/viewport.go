// ABOUTME: Viewport manager for the scrollable convergence trace table
// ABOUTME: Keeps the cursor row centred once the table is taller than the viewport

package tui

// ViewportManager computes scroll offsets for a cursor moving through a list of rows.
// The cursor moves freely near either end and stays centred in between.
type ViewportManager struct {
	height     int // Viewport height in lines
	cursorPos  int // Current cursor row
	totalItems int // Total number of rows
}

// NewViewportManager creates a new viewport manager
func NewViewportManager(height, cursorPos, totalItems int) *ViewportManager {
	return &ViewportManager{
		height:     height,
		cursorPos:  cursorPos,
		totalItems: totalItems,
	}
}

// ScrollPhase names the region of the list the cursor is in
type ScrollPhase int

// Scroll phases: top (cursor moves), middle (content scrolls), bottom (cursor moves)
const (
	TopPhase ScrollPhase = iota
	MiddlePhase
	BottomPhase
)

// GetPhase returns the current scrolling phase
func (vm *ViewportManager) GetPhase() ScrollPhase {
	if vm.totalItems == 0 || vm.height < 1 {
		return TopPhase
	}

	middle := vm.height / 2
	if vm.cursorPos < middle {
		return TopPhase
	}

	if vm.cursorPos < vm.totalItems-vm.height+middle {
		return MiddlePhase
	}

	return BottomPhase
}

// CalculateOffset returns the Y offset that keeps the cursor visible
func (vm *ViewportManager) CalculateOffset() int {
	switch vm.GetPhase() {
	case MiddlePhase:
		return vm.cursorPos - vm.height/2
	case BottomPhase:
		return max(vm.totalItems-vm.height, 0)
	default:
		return 0
	}
}
