package ui

import (
	"strings"

	"github.com/vanderheijden86/qcview/pkg/model"
)

// SegmentKey identifies one bar segment: a module plus the pass/fail kind.
type SegmentKey struct {
	ModuleKey string
	Kind      model.Status
}

// Popover is the view model for one segment's sample overlay. It keeps the
// original sample list alongside the joined display text so follow-on actions
// never have to parse rendered output.
type Popover struct {
	// Samples is the sorted sample-name list behind the segment.
	Samples []string
	// Display is the newline-joined rendering of Samples.
	Display string
	// Tag classifies the popover (pass/fail) for styling only.
	Tag model.Status
}

// PopoverController lazily builds and memoizes one Popover per segment.
// A segment goes Uncreated -> Created on first hover and stays Created;
// repeated hovers are no-ops and content is never recomputed, which is fine
// because the status map is read-only after load. Reset drops everything,
// used when the report itself is reloaded from disk.
type PopoverController struct {
	created map[SegmentKey]*Popover
}

// NewPopoverController returns an empty controller.
func NewPopoverController() *PopoverController {
	return &PopoverController{created: make(map[SegmentKey]*Popover)}
}

// Ensure returns the popover for the segment, building it on first call.
func (c *PopoverController) Ensure(mod *model.Module, kind model.Status) *Popover {
	key := SegmentKey{ModuleKey: mod.Key, Kind: kind}
	if p, ok := c.created[key]; ok {
		return p
	}

	samples := mod.Statuses.SamplesWithStatus(kind)
	p := &Popover{
		Samples: samples,
		Display: strings.Join(samples, "\n"),
		Tag:     kind,
	}
	c.created[key] = p
	return p
}

// Created reports whether the segment's popover has been built.
func (c *PopoverController) Created(key SegmentKey) bool {
	_, ok := c.created[key]
	return ok
}

// Get returns the popover if it was built, without building it.
func (c *PopoverController) Get(key SegmentKey) (*Popover, bool) {
	p, ok := c.created[key]
	return p, ok
}

// Reset discards all built popovers.
func (c *PopoverController) Reset() {
	c.created = make(map[SegmentKey]*Popover)
}

// Len returns the number of built popovers.
func (c *PopoverController) Len() int {
	return len(c.created)
}
