package ui

import (
	"github.com/javiermolinar/sancho-schedule/internal/controller"
)

// lastChildSortKey returns the sortKey of the last existing child of
// parentID (or the last root-level task, when parentID is ""), or nil
// if there are none yet — used to append a new task at the end of its
// sibling group via internal/order.GenerateAppendKey.
func lastChildSortKey(ctrl *controller.Controller, parentID string) *string {
	tasks, _ := ctrl.CurrentState()
	var last *string
	for _, t := range tasks {
		var tParent string
		if t.ParentID != nil {
			tParent = *t.ParentID
		}
		if tParent != parentID {
			continue
		}
		if last == nil || t.SortKey > *last {
			k := t.SortKey
			last = &k
		}
	}
	return last
}
