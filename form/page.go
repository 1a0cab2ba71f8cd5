package form

import (
	"sync"
)

// PageState is the template data for the greeting page.
type PageState struct {
	Name     string
	Greeting string
	Error    string
	Pending  bool
}

// PageView is a View over a PageState, used when the page is rendered on the
// server instead of updated in the browser.
type PageView struct {
	mu    sync.Mutex
	state PageState
}

func NewPageView(name, greeting string) *PageView {
	return &PageView{state: PageState{Name: name, Greeting: greeting}}
}

func (v *PageView) Name() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Name
}

func (v *PageView) SetPending(pending bool) {
	v.mu.Lock()
	v.state.Pending = pending
	v.mu.Unlock()
}

func (v *PageView) SetGreeting(text string) {
	v.mu.Lock()
	v.state.Greeting = text
	v.mu.Unlock()
}

func (v *PageView) SetError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil {
		v.state.Error = ""
		return
	}
	v.state.Error = err.Error()
}

// State returns a copy of the current page state.
func (v *PageView) State() PageState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}
