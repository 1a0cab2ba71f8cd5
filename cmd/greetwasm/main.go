//go:build js && wasm

// Command greetwasm binds the greeting form's submission handler to the page
// it is loaded into. Build it with GOOS=js GOARCH=wasm (see `greetform build`).
package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall/js"
	"time"

	"github.com/go-barry/greetform/form"
	"github.com/go-barry/greetform/greeter"
)

// envGreetTimeout is set by web/public/loader.js from the page's
// data-timeout attribute.
const envGreetTimeout = "GREETFORM_GREET_TIMEOUT"

// stopFunc is the global the loader calls before starting a rebuilt handler.
const stopFunc = "greetformStop"

// domView is a form.View over the live document.
type domView struct {
	button   js.Value
	name     js.Value
	greeting js.Value
	status   js.Value
}

func (v *domView) Name() string {
	return v.name.Get("value").String()
}

func (v *domView) SetPending(pending bool) {
	if pending {
		v.button.Call("setAttribute", "disabled", true)
		return
	}
	v.button.Call("removeAttribute", "disabled")
}

func (v *domView) SetGreeting(text string) {
	v.greeting.Set("innerText", text)
}

func (v *domView) SetError(err error) {
	if v.status.IsNull() || v.status.IsUndefined() {
		if err != nil {
			js.Global().Get("console").Call("error", err.Error())
		}
		return
	}
	if err == nil {
		v.status.Set("innerText", "")
		v.status.Set("hidden", true)
		return
	}
	v.status.Set("innerText", err.Error())
	v.status.Set("hidden", false)
}

type jsEvent struct {
	v js.Value
}

func (e jsEvent) PreventDefault() {
	e.v.Call("preventDefault")
}

func bind(doc js.Value) (js.Value, *domView, error) {
	formEl := doc.Call("querySelector", "form")
	if formEl.IsNull() {
		return js.Null(), nil, errors.New("greetwasm: no form on page")
	}
	view := &domView{
		button:   formEl.Call("querySelector", "button"),
		name:     doc.Call("getElementById", "name"),
		greeting: doc.Call("getElementById", "greeting"),
		status:   doc.Call("getElementById", "status"),
	}
	if view.button.IsNull() || view.name.IsNull() || view.greeting.IsNull() {
		return js.Null(), nil, errors.New("greetwasm: form is missing #name, #greeting or its button")
	}
	return formEl, view, nil
}

func greetTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv(envGreetTimeout))
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// binding is a handler attached to a form's submit event.
type binding struct {
	form     js.Value
	handler  *form.Handler
	onSubmit js.Func
	done     chan struct{}
	once     sync.Once

	mu   sync.Mutex
	last *form.Submission
}

func attach(doc js.Value, g greeter.Greeter, opts ...form.Option) (*binding, error) {
	formEl, view, err := bind(doc)
	if err != nil {
		return nil, err
	}

	b := &binding{
		form:    formEl,
		handler: form.New(g, view, opts...),
		done:    make(chan struct{}),
	}
	b.onSubmit = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var ev form.Event = form.NoEvent
		if len(args) > 0 {
			ev = jsEvent{v: args[0]}
		}
		s, err := b.handler.Submit(context.Background(), ev)
		if err != nil {
			js.Global().Get("console").Call("warn", err.Error())
			return false
		}
		b.mu.Lock()
		b.last = s
		b.mu.Unlock()
		return false
	})
	formEl.Call("addEventListener", "submit", b.onSubmit)
	return b, nil
}

// detach removes the submit listener. A submission already in flight still
// settles into the view; settle waits for it.
func (b *binding) detach() {
	b.once.Do(func() {
		b.form.Call("removeEventListener", "submit", b.onSubmit)
		b.onSubmit.Release()
		close(b.done)
	})
}

func (b *binding) settle() {
	b.mu.Lock()
	s := b.last
	b.mu.Unlock()
	if s != nil {
		<-s.Done()
	}
}

func main() {
	global := js.Global()
	console := global.Get("console")

	origin := global.Get("location").Get("origin").String()
	b, err := attach(global.Get("document"), greeter.NewRemote(origin, nil), form.WithTimeout(greetTimeout()))
	if err != nil {
		console.Call("error", err.Error())
		return
	}

	stop := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		b.detach()
		return nil
	})
	global.Set(stopFunc, stop)

	<-b.done
	b.settle()
	// A restarted handler may already have installed its own stop func.
	if global.Get(stopFunc).Equal(stop.Value) {
		global.Delete(stopFunc)
	}
	stop.Release()
}
