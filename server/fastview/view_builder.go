package fastview

import (
	"context"
	"errors"

	channerics "github.com/niceyeti/channerics/channels"
)

var (
	ErrNoViews error = errors.New("no views to build: WithView must be called")
	ErrNoModel error = errors.New("no model specified: WithModel must be called")
)

// ViewBuilderFunc builds one view over the shared view-model stream. The done chan closes
// when the page goes away.
type ViewBuilderFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) ViewComponent

// ViewBuilder wires several views to one source. Each source item (a trial snapshot, say) is
// converted to the view-model once, and every view gets its own copy of the result.
type ViewBuilder[DataModel any, ViewModel any] struct {
	done    <-chan struct{}
	source  <-chan DataModel
	convert func(DataModel) ViewModel
	views   []ViewBuilderFunc[ViewModel]
}

func NewViewBuilder[DataModel any, ViewModel any]() *ViewBuilder[DataModel, ViewModel] {
	return &ViewBuilder[DataModel, ViewModel]{}
}

// WithContext closes every derived channel when ctx is done. Without it they live until
// the source closes.
func (vb *ViewBuilder[DataModel, ViewModel]) WithContext(
	ctx context.Context,
) *ViewBuilder[DataModel, ViewModel] {
	vb.done = ctx.Done()
	return vb
}

func (vb *ViewBuilder[DataModel, ViewModel]) WithModel(
	source <-chan DataModel,
	convert func(DataModel) ViewModel,
) *ViewBuilder[DataModel, ViewModel] {
	vb.source = source
	vb.convert = convert
	return vb
}

// WithView appends a view; Build returns views in this order.
func (vb *ViewBuilder[DataModel, ViewModel]) WithView(
	build ViewBuilderFunc[ViewModel],
) *ViewBuilder[DataModel, ViewModel] {
	vb.views = append(vb.views, build)
	return vb
}

func (vb *ViewBuilder[DataModel, ViewModel]) Build() ([]ViewComponent, error) {
	if len(vb.views) == 0 {
		return nil, ErrNoViews
	}
	if vb.source == nil || vb.convert == nil {
		return nil, ErrNoModel
	}

	models := channerics.Broadcast(
		vb.done,
		channerics.Convert(vb.done, vb.source, vb.convert),
		len(vb.views))

	components := make([]ViewComponent, len(vb.views))
	for i, build := range vb.views {
		components[i] = build(vb.done, models[i])
	}
	return components, nil
}
