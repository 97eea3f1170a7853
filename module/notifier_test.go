package module

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_PassByValue(t *testing.T) {
	notifier := NewNotifier()

	var sent sync.WaitGroup
	sent.Add(1)
	go func(n Notifier) {
		n.Notify()
		sent.Done()
	}(notifier)
	sent.Wait()

	select {
	case <-notifier.Channel():
	default:
		t.Fail()
	}
}

func TestNotifier_Collapses(t *testing.T) {
	notifier := NewNotifier()
	for i := 0; i < 10; i++ {
		notifier.Notify()
	}

	received := 0
	for {
		select {
		case <-notifier.Channel():
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 1, received)
}
