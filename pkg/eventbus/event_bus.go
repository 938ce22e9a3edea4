package eventbus

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

type Subscriber struct {
	Handler interface{}
}

type EventBus interface {
	Publish(args ...interface{})
	Subscribe(handler interface{})
	Unsubscribe(handler interface{})
	Clear()
	SubscribersCount() int
}

type publisherImpl struct {
	log         *logrus.Logger
	mu          sync.RWMutex
	Subscribers []Subscriber
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisherImpl{log: log}
}

// MatchSignature reports whether handler is a func whose parameters can be
// called with args.
func MatchSignature(handler interface{}, args []interface{}) bool {
	t := reflect.TypeOf(handler)
	if t.Kind() != reflect.Func {
		return false
	}

	if t.NumIn() != len(args) {
		return false
	}

	for i, arg := range args {
		paramType := t.In(i)
		argType := reflect.TypeOf(arg)

		if arg == nil {
			if paramType.Kind() != reflect.Interface && paramType.Kind() != reflect.Ptr {
				return false
			}
			continue
		}

		if paramType.Kind() == reflect.Interface {
			if !argType.Implements(paramType) {
				return false
			}
			continue
		}

		if !argType.AssignableTo(paramType) {
			return false
		}
	}

	return true
}

func (p *publisherImpl) Publish(args ...interface{}) {
	p.mu.RLock()
	subscribers := make([]Subscriber, len(p.Subscribers))
	copy(subscribers, p.Subscribers)
	p.mu.RUnlock()

	matched := 0
	for _, sub := range subscribers {
		if !MatchSignature(sub.Handler, args) {
			continue
		}
		matched++
		callArgs := make([]reflect.Value, len(args))
		handlerType := reflect.TypeOf(sub.Handler)
		for i, arg := range args {
			if arg == nil {
				callArgs[i] = reflect.Zero(handlerType.In(i))
				continue
			}
			callArgs[i] = reflect.ValueOf(arg)
		}
		reflect.ValueOf(sub.Handler).Call(callArgs)
	}
	if matched == 0 && p.log != nil {
		p.log.WithField("args", len(args)).Debug("eventbus: no matching subscribers")
	}
}

func (p *publisherImpl) Subscribe(handler interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Subscribers = append(p.Subscribers, Subscriber{Handler: handler})
}

func (p *publisherImpl) Unsubscribe(handler interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	target := reflect.ValueOf(handler).Pointer()
	out := p.Subscribers[:0]
	for _, sub := range p.Subscribers {
		if reflect.ValueOf(sub.Handler).Pointer() != target {
			out = append(out, sub)
		}
	}
	p.Subscribers = out
}

func (p *publisherImpl) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Subscribers = nil
}

func (p *publisherImpl) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.Subscribers)
}
