package game

import "time"

type timerKind int

const (
	timerRoundEnd timerKind = iota
	timerTickBroadcast
	timerNextRound
	timerGameOver
)

// timerContainer owns the four schedulable events of a room: the round-end
// deadline, the 1s tick broadcast, the round-end-to-next-round delay and the
// game-over delay. Every handle is nullable and cancellation is idempotent.
type timerContainer struct {
	roundEnd  *time.Timer
	tick      *time.Ticker
	tickStop  chan struct{}
	nextRound *time.Timer
	gameOver  *time.Timer
}

func (tc *timerContainer) armRoundEnd(d time.Duration, fire func()) {
	tc.stopRoundEnd()
	tc.roundEnd = time.AfterFunc(d, fire)
}

func (tc *timerContainer) stopRoundEnd() {
	if tc.roundEnd != nil {
		tc.roundEnd.Stop()
		tc.roundEnd = nil
	}
}

func (tc *timerContainer) startTick(fire func()) {
	tc.stopTick()
	tc.tick = time.NewTicker(time.Second)
	tc.tickStop = make(chan struct{})
	go func(ticker *time.Ticker, stop chan struct{}) {
		for {
			select {
			case <-ticker.C:
				fire()
			case <-stop:
				return
			}
		}
	}(tc.tick, tc.tickStop)
}

func (tc *timerContainer) stopTick() {
	if tc.tick != nil {
		tc.tick.Stop()
		close(tc.tickStop)
		tc.tick = nil
		tc.tickStop = nil
	}
}

func (tc *timerContainer) armNextRound(d time.Duration, fire func()) {
	tc.stopNextRound()
	tc.nextRound = time.AfterFunc(d, fire)
}

func (tc *timerContainer) stopNextRound() {
	if tc.nextRound != nil {
		tc.nextRound.Stop()
		tc.nextRound = nil
	}
}

func (tc *timerContainer) armGameOver(d time.Duration, fire func()) {
	tc.stopGameOver()
	tc.gameOver = time.AfterFunc(d, fire)
}

func (tc *timerContainer) stopGameOver() {
	if tc.gameOver != nil {
		tc.gameOver.Stop()
		tc.gameOver = nil
	}
}

func (tc *timerContainer) stopAll() {
	tc.stopRoundEnd()
	tc.stopTick()
	tc.stopNextRound()
	tc.stopGameOver()
}
