package realtime

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Fanout 并发投递到所有目标，任一目标失败不影响其他目标
type Fanout struct {
	sinks []Sink
}

// NewFanout 组合多个投递目标，nil 会被忽略
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish 实现 Notifier，返回所有失败的合并错误。
// 各目标的错误按下标保存后合并，g.Go 始终返回 nil，否则 Wait 只会带回第一个错误。
func (f *Fanout) Publish(ctx context.Context, itineraryID uint, event string, payload any) error {
	errs := make([]error, len(f.sinks))
	var g errgroup.Group
	for i, s := range f.sinks {
		g.Go(func() error {
			errs[i] = s.Publish(ctx, itineraryID, event, payload)
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}
