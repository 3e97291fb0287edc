package signal

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vnykmshr/signalflow/internal/testutil"
	gferrors "github.com/vnykmshr/signalflow/pkg/common/errors"
)

// manualSource is a signal source driven by the test. It counts mounts and
// unmounts and exposes the emitter of the current mount.
type manualSource[T any] struct {
	mu       sync.Mutex
	emit     *Observer[T]
	mounts   int
	unmounts int
}

func newManual[T any]() (*Signal[T], *manualSource[T]) {
	m := &manualSource[T]{}
	s := MustNew(func(emit Observer[T]) func() {
		m.mu.Lock()
		m.mounts++
		m.emit = &emit
		m.mu.Unlock()
		return func() {
			m.mu.Lock()
			m.unmounts++
			m.emit = nil
			m.mu.Unlock()
		}
	})
	return s, m
}

func (m *manualSource[T]) emitter() *Observer[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emit
}

func (m *manualSource[T]) next(v T) {
	if e := m.emitter(); e != nil {
		e.Next(v)
	}
}

func (m *manualSource[T]) error(err error) {
	if e := m.emitter(); e != nil {
		e.Error(err)
	}
}

func (m *manualSource[T]) complete() {
	if e := m.emitter(); e != nil {
		e.Complete()
	}
}

func (m *manualSource[T]) counts() (mounts, unmounts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounts, m.unmounts
}

func record[T any](s *Signal[T]) (*testutil.Recorder[T], *Subscription[T]) {
	rec := testutil.NewRecorder[T]()
	sub := s.Subscribe(Observer[T]{Next: rec.Next, Error: rec.Error, Complete: rec.Complete})
	return rec, sub
}

func TestNew_NilMount(t *testing.T) {
	s, err := New[int](nil)
	testutil.AssertError(t, err)
	if s != nil {
		t.Error("expected nil signal on error")
	}
	if !errors.Is(err, gferrors.ErrType) {
		t.Errorf("expected ErrType, got %v", err)
	}

	_, err = NewWithConfig[string](DefaultConfig(), nil)
	if !gferrors.IsTypeError(err) {
		t.Errorf("expected TypeError, got %T", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustNew should panic on a nil mount")
		}
	}()
	MustNew[int](nil)
}

func TestSignal_MountExactlyOnce(t *testing.T) {
	s, src := newManual[int]()

	subs := []*Subscription[int]{
		s.SubscribeNext(func(int) {}),
		s.SubscribeNext(func(int) {}),
		s.SubscribeNext(func(int) {}),
	}

	mounts, unmounts := src.counts()
	testutil.AssertEqual(t, mounts, 1)
	testutil.AssertEqual(t, unmounts, 0)
	testutil.AssertEqual(t, s.Subscribers(), 3)
	testutil.AssertEqual(t, s.Mounted(), true)

	subs[0].Unsubscribe()
	subs[1].Unsubscribe()
	_, unmounts = src.counts()
	testutil.AssertEqual(t, unmounts, 0)

	subs[2].Unsubscribe()
	mounts, unmounts = src.counts()
	testutil.AssertEqual(t, mounts, 1)
	testutil.AssertEqual(t, unmounts, 1)
	testutil.AssertEqual(t, s.Mounted(), false)
}

func TestSignal_Remount(t *testing.T) {
	s, src := newManual[int]()

	s.SubscribeNext(func(int) {}).Unsubscribe()
	rec, sub := record(s)
	defer sub.Unsubscribe()

	mounts, unmounts := src.counts()
	testutil.AssertEqual(t, mounts, 2)
	testutil.AssertEqual(t, unmounts, 1)

	src.next(7)
	testutil.AssertSliceEqual(t, rec.Values(), []int{7})
}

func TestSignal_NilUnmount(t *testing.T) {
	mounts := 0
	s := MustNew(func(emit Observer[int]) func() {
		mounts++
		return nil
	})

	s.SubscribeNext(func(int) {}).Unsubscribe()
	s.SubscribeNext(func(int) {}).Unsubscribe()

	testutil.AssertEqual(t, mounts, 2)
	testutil.AssertEqual(t, s.Mounted(), false)
}

func TestSubscription_UnsubscribeIdempotent(t *testing.T) {
	s, src := newManual[int]()

	keep, keepSub := record(s)
	defer keepSub.Unsubscribe()
	gone, goneSub := record(s)

	goneSub.Unsubscribe()
	goneSub.Unsubscribe()

	testutil.AssertEqual(t, goneSub.Active(), false)
	testutil.AssertEqual(t, s.Subscribers(), 1)
	_, unmounts := src.counts()
	testutil.AssertEqual(t, unmounts, 0)

	src.next(1)
	testutil.AssertSliceEqual(t, keep.Values(), []int{1})
	testutil.AssertEqual(t, gone.Len(), 0)
	if goneSub.Signal() != s {
		t.Error("subscription should reference its signal")
	}
}

func TestSignal_BroadcastFanOut(t *testing.T) {
	s, src := newManual[string]()

	recs := make([]*testutil.Recorder[string], 3)
	for i := range recs {
		var sub *Subscription[string]
		recs[i], sub = record(s)
		defer sub.Unsubscribe()
	}

	src.next("x")
	src.next("y")
	src.error(errors.New("boom"))
	src.complete()

	for _, rec := range recs {
		testutil.AssertSliceEqual(t, rec.Values(), []string{"x", "y"})
		testutil.AssertEqual(t, len(rec.Errors()), 1)
		testutil.AssertEqual(t, rec.Completions(), 1)
	}
}

func TestSignal_RegistrationOrder(t *testing.T) {
	s, src := newManual[int]()

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		sub := s.SubscribeNext(func(int) { order = append(order, name) })
		defer sub.Unsubscribe()
	}

	src.next(1)
	testutil.AssertSliceEqual(t, order, []string{"a", "b", "c"})
}

func TestSignal_MissingCallbacksSkipped(t *testing.T) {
	s, src := newManual[int]()
	sub := s.Subscribe(Observer[int]{})
	defer sub.Unsubscribe()

	completed := false
	other := s.SubscribeFunc(nil, nil, func() { completed = true })
	defer other.Unsubscribe()

	src.next(1)
	src.error(errors.New("ignored"))
	src.complete()

	testutil.AssertEqual(t, completed, true)
}

func TestSignal_UnsubscribeDuringBroadcast(t *testing.T) {
	s, src := newManual[int]()

	var laterCalls int
	var later *Subscription[int]
	first := s.SubscribeNext(func(v int) {
		later.Unsubscribe()
	})
	defer first.Unsubscribe()
	later = s.SubscribeNext(func(int) { laterCalls++ })

	src.next(1)
	testutil.AssertEqual(t, laterCalls, 0)
	testutil.AssertEqual(t, s.Subscribers(), 1)
}

func TestSignal_SelfUnsubscribeDuringBroadcast(t *testing.T) {
	s, src := newManual[int]()

	var got []int
	var self *Subscription[int]
	self = s.SubscribeNext(func(v int) {
		got = append(got, v)
		self.Unsubscribe()
	})

	src.next(1)
	src.next(2)

	testutil.AssertSliceEqual(t, got, []int{1})
	_, unmounts := src.counts()
	testutil.AssertEqual(t, unmounts, 1)
}

func TestSignal_SubscribeDuringBroadcast(t *testing.T) {
	s, src := newManual[int]()

	late := testutil.NewRecorder[int]()
	var lateSub *Subscription[int]
	first := s.SubscribeNext(func(v int) {
		if lateSub == nil {
			lateSub = s.SubscribeNext(late.Next)
		}
	})
	defer first.Unsubscribe()

	src.next(1)
	src.next(2)
	lateSub.Unsubscribe()

	testutil.AssertSliceEqual(t, late.Values(), []int{2})
}

func TestSignal_SynchronousEmissionDuringMount(t *testing.T) {
	mounts, unmounts := 0, 0
	s := MustNew(func(emit Observer[int]) func() {
		mounts++
		for i := 1; i <= 3; i++ {
			emit.Next(i)
		}
		emit.Complete()
		return func() { unmounts++ }
	})

	var got []int
	s.SubscribeWith(func(sub *Subscription[int]) Observer[int] {
		return NextFunc(func(v int) {
			got = append(got, v)
			sub.Unsubscribe()
		})
	})

	testutil.AssertSliceEqual(t, got, []int{1})
	testutil.AssertEqual(t, mounts, 1)
	testutil.AssertEqual(t, unmounts, 1)
	testutil.AssertEqual(t, s.Mounted(), false)
}

func TestSignal_ResubscribeDuringMount(t *testing.T) {
	mounts, unmounts := 0, 0
	s := MustNew(func(emit Observer[int]) func() {
		mounts++
		emit.Next(1)
		return func() { unmounts++ }
	})

	var replacement *Subscription[int]
	first := s.SubscribeWith(func(sub *Subscription[int]) Observer[int] {
		return NextFunc(func(int) {
			sub.Unsubscribe()
			if replacement == nil {
				replacement = s.SubscribeNext(func(int) {})
			}
		})
	})
	testutil.AssertEqual(t, first.Active(), false)

	testutil.AssertEqual(t, mounts, 1)
	testutil.AssertEqual(t, unmounts, 0)
	testutil.AssertEqual(t, s.Mounted(), true)

	replacement.Unsubscribe()
	testutil.AssertEqual(t, unmounts, 1)
}

func TestSignal_SubscribeWithUnsubscribedBeforeRegistration(t *testing.T) {
	s, src := newManual[int]()

	sub := s.SubscribeWith(func(sub *Subscription[int]) Observer[int] {
		sub.Unsubscribe()
		return Observer[int]{}
	})

	testutil.AssertEqual(t, sub.Active(), false)
	testutil.AssertEqual(t, s.Subscribers(), 0)
	mounts, _ := src.counts()
	testutil.AssertEqual(t, mounts, 0)
}

func TestSignal_StaleEmitterDropped(t *testing.T) {
	var emitters []Observer[int]
	s := MustNew(func(emit Observer[int]) func() {
		emitters = append(emitters, emit)
		return nil
	})

	s.SubscribeNext(func(int) {}).Unsubscribe()
	rec, sub := record(s)
	defer sub.Unsubscribe()

	emitters[0].Next(1)
	emitters[0].Complete()
	emitters[1].Next(2)

	testutil.AssertSliceEqual(t, rec.Values(), []int{2})
	testutil.AssertEqual(t, rec.Completions(), 0)
}

func TestSignal_PanicIsolation(t *testing.T) {
	var buf bytes.Buffer
	var recovered []interface{}
	s, err := NewWithConfig(Config{
		Name:    "panicky",
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
		OnPanic: func(r interface{}) { recovered = append(recovered, r) },
	}, func(emit Observer[int]) func() {
		emit.Next(1)
		return nil
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, s.Name(), "panicky")

	bad := s.SubscribeNext(func(int) { panic("observer failure") })
	defer bad.Unsubscribe()

	good, goodSub := record(s)
	defer goodSub.Unsubscribe()

	// The first broadcast happened during mount, before good subscribed.
	testutil.AssertEqual(t, len(recovered), 1)
	testutil.AssertEqual(t, recovered[0].(string), "observer failure")
	testutil.AssertEqual(t, good.Len(), 0)
	if !strings.Contains(buf.String(), "observer panicked") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "signal=panicky") {
		t.Errorf("expected signal name in log, got %q", buf.String())
	}
}

func TestSignal_PanicDoesNotStopOtherSubscribers(t *testing.T) {
	s, src := newManual[int]()
	s.config.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.logger = s.config.Logger

	bad := s.SubscribeNext(func(int) { panic("boom") })
	defer bad.Unsubscribe()
	good, goodSub := record(s)
	defer goodSub.Unsubscribe()

	src.next(1)
	src.next(2)

	testutil.AssertSliceEqual(t, good.Values(), []int{1, 2})
	testutil.AssertEqual(t, s.Subscribers(), 2)
}

func TestSignal_MountPanicRollsBack(t *testing.T) {
	var mounts, unmounts int
	s := MustNew(func(emit Observer[int]) func() {
		mounts++
		if mounts == 1 {
			panic("source unavailable")
		}
		emit.Next(mounts)
		return func() { unmounts++ }
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the mount panic to reach the subscriber")
			}
		}()
		s.SubscribeNext(func(int) {})
	}()

	testutil.AssertEqual(t, s.Mounted(), false)
	testutil.AssertEqual(t, s.Subscribers(), 0)

	rec, sub := record(s)
	testutil.AssertEqual(t, mounts, 2)
	testutil.AssertEqual(t, s.Mounted(), true)
	testutil.AssertEqual(t, s.Subscribers(), 1)
	testutil.AssertSliceEqual(t, rec.Values(), []int{2})

	sub.Unsubscribe()
	testutil.AssertEqual(t, s.Mounted(), false)
	testutil.AssertEqual(t, unmounts, 1)
}

func TestSubscription_UnsubscribeFromBuilderGoroutine(t *testing.T) {
	s, _ := newManual[int]()

	var wg sync.WaitGroup
	sub := s.SubscribeWith(func(sub *Subscription[int]) Observer[int] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub.Unsubscribe()
		}()
		return Observer[int]{}
	})
	wg.Wait()

	testutil.AssertEqual(t, sub.Active(), false)
	testutil.AssertEqual(t, s.Subscribers(), 0)
	testutil.AssertEqual(t, s.Mounted(), false)
}

func TestSignal_ConcurrentSubscribe(t *testing.T) {
	var active, maxActive, mounts, unmounts int32
	s := MustNew(func(emit Observer[int]) func() {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		atomic.AddInt32(&mounts, 1)
		return func() {
			atomic.AddInt32(&unmounts, 1)
			atomic.AddInt32(&active, -1)
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.SubscribeNext(func(int) {}).Unsubscribe()
			}
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, s.Subscribers(), 0)
	testutil.AssertEqual(t, s.Mounted(), false)
	testutil.AssertEqual(t, atomic.LoadInt32(&maxActive), int32(1))
	testutil.AssertEqual(t, atomic.LoadInt32(&mounts), atomic.LoadInt32(&unmounts))
	testutil.AssertEqual(t, atomic.LoadInt32(&active), int32(0))
}

func TestSignal_ConcurrentBroadcast(t *testing.T) {
	s, src := newManual[int]()

	var total int64
	for i := 0; i < 4; i++ {
		sub := s.SubscribeNext(func(v int) { atomic.AddInt64(&total, int64(v)) })
		defer sub.Unsubscribe()
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				src.next(1)
			}
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, atomic.LoadInt64(&total), int64(4*10*100))
}
