package game

// History is linear undo/redo over executed commands.
//
// performed holds applied commands (top = most recent), undone holds
// reverted ones. Performing a new command clears undone, so the two stacks
// never share a command.
type History struct {
	performed []Command
	undone    []Command
}

// Perform executes c against s and records it.
func (h *History) Perform(c Command, s *State) {
	c.execute(s)
	h.performed = append(h.performed, c)
	clear(h.undone)
	h.undone = h.undone[:0]
}

// Undo reverts the most recent command.
func (h *History) Undo(s *State) (Command, error) {
	n := len(h.performed)
	if n == 0 {
		return nil, ErrNothingToUndo
	}
	c := h.performed[n-1]
	h.performed[n-1] = nil
	h.performed = h.performed[:n-1]
	c.undo(s)
	h.undone = append(h.undone, c)
	return c, nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo(s *State) (Command, error) {
	n := len(h.undone)
	if n == 0 {
		return nil, ErrNothingToRedo
	}
	c := h.undone[n-1]
	h.undone[n-1] = nil
	h.undone = h.undone[:n-1]
	c.redo(s)
	h.performed = append(h.performed, c)
	return c, nil
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.performed = nil
	h.undone = nil
}

func (h *History) CanUndo() bool { return len(h.performed) > 0 }
func (h *History) CanRedo() bool { return len(h.undone) > 0 }
