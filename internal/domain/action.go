package domain

import (
	"fmt"
	"strings"
)

// Action is what a user can do with a saved search from the list.
// Open is the plain activation of a row, the others come from the
// long-press menu.
type Action int

const (
	ActionOpen Action = iota
	ActionShare
	ActionEdit
	ActionDelete
)

var actionNames = map[Action]string{
	ActionOpen:   "open",
	ActionShare:  "share",
	ActionEdit:   "edit",
	ActionDelete: "delete",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// LongPressActions lists the menu entries in display order.
func LongPressActions() []Action {
	return []Action{ActionShare, ActionEdit, ActionDelete}
}

// ParseAction maps a name ("share", "Edit", ...) to its Action.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}
