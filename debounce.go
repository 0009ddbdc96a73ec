package tableview

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period of a Debouncer
// created with an interval <= 0.
const DefaultDebounce = 100 * time.Millisecond

// Timer is a scheduled function call that can be stopped.
type Timer interface {
	// Stop prevents the call if it has not started yet
	// and returns false if it already started or was stopped.
	Stop() bool
}

// Scheduler calls functions after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc implements Scheduler for a function.
type SchedulerFunc func(d time.Duration, f func()) Timer

func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) Timer {
	return f(d, fn)
}

// TimeScheduler schedules calls with time.AfterFunc
// on their own goroutine.
var TimeScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
})

// Debouncer holds at most one pending deferred call.
// Every Trigger cancels the pending call and schedules
// the new one after the quiet period.
type Debouncer struct {
	interval  time.Duration
	scheduler Scheduler

	mtx     sync.Mutex
	timer   Timer
	pending func()
	// gen identifies the currently pending call so that
	// a timer that fired concurrently with Trigger or Cancel
	// can detect that it became stale.
	gen uint64
}

// NewDebouncer returns a Debouncer with the passed quiet period
// using TimeScheduler if scheduler is nil.
func NewDebouncer(interval time.Duration, scheduler Scheduler) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	if scheduler == nil {
		scheduler = TimeScheduler
	}
	return &Debouncer{interval: interval, scheduler: scheduler}
}

// Interval returns the quiet period.
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// Trigger replaces the pending call with f
// and restarts the quiet period.
func (d *Debouncer) Trigger(f func()) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = f
	d.timer = d.scheduler.AfterFunc(d.interval, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mtx.Lock()
	if gen != d.gen || d.pending == nil {
		d.mtx.Unlock()
		return
	}
	f := d.pending
	d.pending = nil
	d.timer = nil
	d.mtx.Unlock()

	f()
}

// Cancel drops the pending call
// and returns true if there was one.
func (d *Debouncer) Cancel() bool {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	wasPending := d.pending != nil
	d.stopLocked()
	d.gen++
	return wasPending
}

// Flush runs the pending call immediately
// and returns true if there was one.
func (d *Debouncer) Flush() bool {
	d.mtx.Lock()
	f := d.pending
	d.stopLocked()
	d.gen++
	d.mtx.Unlock()

	if f == nil {
		return false
	}
	f()
	return true
}

// Pending returns true if a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.pending != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

// DebouncedInput coalesces rapid input values and applies
// only the last one after the quiet period of its Debouncer.
type DebouncedInput struct {
	debouncer *Debouncer
	apply     func(string)

	mtx   sync.Mutex
	value string
}

// NewDebouncedInput returns a DebouncedInput that calls apply
// with the last input value after interval without new input.
func NewDebouncedInput(interval time.Duration, scheduler Scheduler, apply func(string)) *DebouncedInput {
	return &DebouncedInput{
		debouncer: NewDebouncer(interval, scheduler),
		apply:     apply,
	}
}

// Input sets the displayed value and restarts the quiet period.
func (in *DebouncedInput) Input(value string) {
	in.mtx.Lock()
	in.value = value
	in.mtx.Unlock()

	in.debouncer.Trigger(func() { in.apply(value) })
}

// Value returns the last input value,
// which may not have been applied yet.
func (in *DebouncedInput) Value() string {
	in.mtx.Lock()
	defer in.mtx.Unlock()

	return in.value
}

// Reset sets the displayed value without applying it
// and cancels a pending application.
func (in *DebouncedInput) Reset(value string) {
	in.debouncer.Cancel()

	in.mtx.Lock()
	in.value = value
	in.mtx.Unlock()
}

// Pending returns true if a value waits to be applied.
func (in *DebouncedInput) Pending() bool { return in.debouncer.Pending() }

// Flush applies a pending value immediately.
func (in *DebouncedInput) Flush() bool { return in.debouncer.Flush() }

// Cancel drops a pending value.
func (in *DebouncedInput) Cancel() bool { return in.debouncer.Cancel() }

// GlobalFilterInput returns a DebouncedInput for the
// global search box of vm, initialized with its query.
func GlobalFilterInput(vm *ViewModel, interval time.Duration, scheduler Scheduler) *DebouncedInput {
	in := NewDebouncedInput(interval, scheduler, vm.SetGlobalFilter)
	in.value = vm.GlobalFilter()
	return in
}

// ColumnFilterInput returns a DebouncedInput for the text
// or select filter of a column of vm.
// An empty input removes the filter.
func ColumnFilterInput(vm *ViewModel, columnID string, interval time.Duration, scheduler Scheduler) (*DebouncedInput, error) {
	if _, err := vm.column(columnID); err != nil {
		return nil, err
	}
	in := NewDebouncedInput(interval, scheduler, func(value string) {
		var filter any
		if value != "" {
			filter = value
		}
		// The column was validated above
		_ = vm.SetColumnFilter(columnID, filter)
	})
	if s, ok := vm.ColumnFilter(columnID).(string); ok {
		in.value = s
	}
	return in, nil
}

// RangeFilterInputs returns the minimum and maximum inputs for the
// range filter of a column of vm. Each input replaces only its own
// bound of the filter as [2]any keeping the other one.
// An empty input leaves its bound open, two open bounds remove the filter.
func RangeFilterInputs(vm *ViewModel, columnID string, interval time.Duration, scheduler Scheduler) (minInput, maxInput *DebouncedInput, err error) {
	if _, err := vm.column(columnID); err != nil {
		return nil, nil, err
	}
	setBound := func(i int) func(string) {
		return func(value string) {
			vm.updateColumnFilter(columnID, func(old any) any {
				bounds := rangeInputBounds(old)
				bounds[i] = nil
				if value != "" {
					bounds[i] = value
				}
				if bounds[0] == nil && bounds[1] == nil {
					return nil
				}
				return bounds
			})
		}
	}
	minInput = NewDebouncedInput(interval, scheduler, setBound(0))
	maxInput = NewDebouncedInput(interval, scheduler, setBound(1))
	bounds := rangeInputBounds(vm.ColumnFilter(columnID))
	minInput.value = boundString(bounds[0])
	maxInput.value = boundString(bounds[1])
	return minInput, maxInput, nil
}

func rangeInputBounds(filter any) (bounds [2]any) {
	if b, ok := filter.([2]any); ok {
		return b
	}
	if r, ok := NormalizeRange(filter); ok {
		if r.Min != nil {
			bounds[0] = *r.Min
		}
		if r.Max != nil {
			bounds[1] = *r.Max
		}
	}
	return bounds
}

func boundString(bound any) string {
	if bound == nil {
		return ""
	}
	return CellString(bound)
}
