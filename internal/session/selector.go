package session

import (
	"fmt"
	"io"

	"github.com/nvm/kshell/internal/k8s"
)

// Selection is the single object follow-up commands operate on. The zero
// value is the empty selection. Namespace is empty exactly when the kind is
// cluster-scoped or nothing is selected; Containers is populated for pods
// only.
type Selection struct {
	Kind       k8s.Kind
	Name       string
	Namespace  string
	Containers []string
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.Kind == k8s.KindNone
}

// Selector resolves "select by number" commands against the most recently
// fetched resource list. The selection is a snapshot of the chosen item's
// identity, never a live reference into the list.
type Selector struct {
	lastList k8s.ResourceList
	current  Selection
	out      io.Writer
}

// NewSelector creates a Selector reporting user-facing messages to out.
func NewSelector(out io.Writer) *Selector {
	return &Selector{out: out}
}

// RecordList replaces the remembered list unconditionally. The previous
// list is dropped regardless of kind; there is no merging.
func (s *Selector) RecordList(l k8s.ResourceList) {
	s.lastList = l
}

// LastList returns the most recently recorded list.
func (s *Selector) LastList() k8s.ResourceList {
	return s.lastList
}

// SelectByIndex resolves index i against the recorded list.
//
// With no recorded list the selection is left unchanged and the user is
// told. An out-of-range index clears the selection; that is a normal
// outcome, not an error. An item with no name in its metadata is reported
// and clears the selection.
func (s *Selector) SelectByIndex(i int) {
	if s.lastList.Kind() == k8s.KindNone {
		fmt.Fprintln(s.out, "No active object list")
		return
	}

	item, ok := s.lastList.Item(i)
	if !ok {
		s.current = Selection{}
		return
	}

	if item.Name == "" {
		fmt.Fprintf(s.out, "%s has no name in metadata\n", item.Kind)
		s.current = Selection{}
		return
	}

	s.current = Selection{
		Kind:       item.Kind,
		Name:       item.Name,
		Namespace:  item.Namespace,
		Containers: item.Containers,
	}
}

// Clear forces the selection to empty.
func (s *Selector) Clear() {
	s.current = Selection{}
}

// Current returns the current selection.
func (s *Selector) Current() Selection {
	return s.current
}

// CurrentPodName returns the selected pod's name, and false when the
// selection is empty or not a pod.
func (s *Selector) CurrentPodName() (string, bool) {
	if s.current.Kind != k8s.KindPod {
		return "", false
	}
	return s.current.Name, true
}
