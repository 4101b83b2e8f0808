package clock

import "time"

// Clock は現在時刻の取得を抽象化する
// 「開催日が過去でないか」の判定をテスト可能にするための注入点
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem はtime.Nowに基づくClockを返す
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed は常に同じ時刻を返すClockを返す（テスト用）
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
