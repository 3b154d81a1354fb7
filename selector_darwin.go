//go:build darwin

package xio

import (
	"time"

	"golang.org/x/sys/unix"
)

// kqueueSelector is the Darwin/BSD Selector backend, adapted from the
// teacher's persistent-registration FastPoller (poller_darwin.go) into an
// ephemeral one, for the same reason as epollSelector on Linux: a fresh
// kqueue is opened, populated, and waited on for every Select call.
type kqueueSelector struct{}

func newSelector() (Selector, error) {
	return &kqueueSelector{}, nil
}

func (s *kqueueSelector) Close() error { return nil }

func (s *kqueueSelector) Select(cond Condition, now time.Time) (Observation, error) {
	timeout, noWait := blockingTimeout(cond, now)
	if noWait {
		return Observation{}, nil
	}

	if len(cond.Files) == 0 {
		if timeout < 0 {
			select {}
		}
		time.Sleep(timeout)
		return Observation{}, nil
	}

	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	defer unix.Close(kq)
	unix.CloseOnExec(kq)

	changes := make([]unix.Kevent_t, 0, len(cond.Files)*2)
	for fd, mask := range cond.Files {
		if mask&READ != 0 {
			changes = append(changes, unix.Kevent_t{
				Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_ENABLE,
			})
		}
		if mask&WRITE != 0 {
			changes = append(changes, unix.Kevent_t{
				Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_ENABLE,
			})
		}
	}

	var ts *unix.Timespec
	if timeout >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeout / time.Second),
			Nsec: int64(timeout % time.Second),
		}
	}

	var buf [64]unix.Kevent_t
	n, err := unix.Kevent(kq, changes, buf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return Observation{}, nil
		}
		return nil, err
	}

	obs := make(Observation, n)
	for i := 0; i < n; i++ {
		fd := int(buf[i].Ident)
		switch buf[i].Filter {
		case unix.EVFILT_READ:
			obs[fd] |= READ
		case unix.EVFILT_WRITE:
			obs[fd] |= WRITE
		}
		if buf[i].Flags&unix.EV_ERROR != 0 || buf[i].Flags&unix.EV_EOF != 0 {
			obs[fd] |= READ | WRITE
		}
	}
	return obs, nil
}
