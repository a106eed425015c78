package sched_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/intuitionamiga/vortexbridge/sched"
)

var _ = Describe("Kernel", func() {
	var k *sched.Kernel

	BeforeEach(func() {
		var err error
		k, err = sched.NewKernel(2)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		k.Shutdown()
	})

	It("should reject an odd clock period", func() {
		_, err := sched.NewKernel(3)
		Expect(err).To(HaveOccurred())
	})

	It("should raise the clock every period starting at zero", func() {
		var edges []sched.Time
		k.Spawn("counter", func(t *sched.Task) {
			for {
				t.WaitPosedge()
				edges = append(edges, t.Now())
			}
		})

		Expect(k.RunUntil(6)).To(Succeed())
		Expect(edges).To(Equal([]sched.Time{0, 2, 4, 6}))
	})

	It("should fall the clock half a period after each rising edge", func() {
		var edges []sched.Time
		k.Spawn("counter", func(t *sched.Task) {
			for {
				t.WaitNegedge()
				edges = append(edges, t.Now())
			}
		})

		Expect(k.RunCycles(3)).To(Succeed())
		Expect(edges).To(Equal([]sched.Time{1, 3, 5}))
	})

	It("should commit signal writes only in the update phase", func() {
		s := sched.NewSignal(k, "s", false)
		var before, after bool
		k.Spawn("writer", func(t *sched.Task) {
			s.Write(true)
			before = s.Read()
			t.WaitFor(0)
			after = s.Read()
		})

		Expect(k.RunUntil(0)).To(Succeed())
		Expect(before).To(BeFalse())
		Expect(after).To(BeTrue())
	})

	It("should keep the last write of a delta cycle", func() {
		s := sched.NewSignal(k, "bus", uint64(0))
		k.Spawn("writer", func(t *sched.Task) {
			s.Write(1)
			s.Write(2)
		})

		Expect(k.RunUntil(0)).To(Succeed())
		Expect(s.Read()).To(Equal(uint64(2)))
	})

	It("should wake posedge waiters of a bool signal", func() {
		req := sched.NewSignal(k, "req", false)
		seen := sched.Time(999)
		k.Spawn("watcher", func(t *sched.Task) {
			t.Wait(req.Posedge())
			seen = t.Now()
		})
		k.Spawn("driver", func(t *sched.Task) {
			t.WaitCycles(2)
			req.Write(true)
		})

		Expect(k.RunUntil(10)).To(Succeed())
		Expect(seen).To(Equal(sched.Time(2)))
	})

	It("should hand a mutex to waiters in arrival order", func() {
		var m sched.Mutex
		var log []string
		for _, name := range []string{"a", "b", "c"} {
			name := name
			k.Spawn(name, func(t *sched.Task) {
				m.Lock(t)
				log = append(log, name+"+")
				t.WaitCycles(1)
				log = append(log, name+"-")
				m.Unlock(t)
			})
		}

		Expect(k.RunCycles(10)).To(Succeed())
		Expect(log).To(Equal([]string{"a+", "a-", "b+", "b-", "c+", "c-"}))
		Expect(m.Locked()).To(BeFalse())
		Expect(m.Waiting()).To(Equal(0))
	})

	It("should report which of timeout and event ended a wait", func() {
		ev := k.NewEvent("go")
		var first, second bool
		var at1, at2 sched.Time
		k.Spawn("waiter", func(t *sched.Task) {
			first = t.WaitTimeout(5, ev)
			at1 = t.Now()
			second = t.WaitTimeout(100, ev)
			at2 = t.Now()
		})
		k.Spawn("notifier", func(t *sched.Task) {
			t.WaitFor(20)
			ev.Notify()
		})

		Expect(k.RunUntil(200)).To(Succeed())
		Expect(first).To(BeFalse())
		Expect(at1).To(Equal(sched.Time(5)))
		Expect(second).To(BeTrue())
		Expect(at2).To(Equal(sched.Time(20)))
	})

	It("should surface a task panic as a run error", func() {
		k.Spawn("bad", func(t *sched.Task) {
			t.WaitCycles(1)
			panic("boom")
		})

		err := k.RunCycles(4)
		Expect(err).To(MatchError(ContainSubstring("boom")))
		Expect(k.RunCycles(1)).To(HaveOccurred())
	})

	It("should stop at the current time and resume later", func() {
		k.Spawn("stopper", func(t *sched.Task) {
			t.WaitFor(7)
			t.Kernel().Stop()
		})

		Expect(k.RunUntil(100)).To(Succeed())
		Expect(k.Stopped()).To(BeTrue())
		Expect(k.Now()).To(Equal(sched.Time(7)))

		var edges []sched.Time
		k.Spawn("counter", func(t *sched.Task) {
			for {
				t.WaitPosedge()
				edges = append(edges, t.Now())
			}
		})
		Expect(k.RunUntil(12)).To(Succeed())
		Expect(k.Now()).To(Equal(sched.Time(12)))
		Expect(edges).To(Equal([]sched.Time{8, 10, 12}))
	})

	It("should report every committed clock change to hooks", func() {
		var values []any
		k.OnCommit(func(name string, at sched.Time, value any) {
			if name == "clk" {
				values = append(values, value)
			}
		})

		Expect(k.RunUntil(4)).To(Succeed())
		Expect(values).To(Equal([]any{true, false, true, false, true}))
	})

	It("should unwind blocked tasks on shutdown", func() {
		unwound := false
		ev := k.NewEvent("never")
		k.Spawn("blocked", func(t *sched.Task) {
			defer func() { unwound = true }()
			t.Wait(ev)
		})

		Expect(k.RunCycles(1)).To(Succeed())
		k.Shutdown()
		Expect(unwound).To(BeTrue())
	})
})
