package fastview

import (
	"context"
	"html/template"
	"strconv"
	"testing"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	. "github.com/smartystreets/goconvey/convey"
)

// textView publishes its view-model as the text of a single element.
type textView struct {
	updates <-chan []EleUpdate
}

func newTextView(done <-chan struct{}, texts <-chan string) ViewComponent {
	return &textView{
		updates: channerics.Convert(done, texts, func(text string) []EleUpdate {
			return []EleUpdate{{EleId: "text", Ops: []Op{{Key: "textContent", Value: text}}}}
		}),
	}
}

func (tv *textView) Updates() <-chan []EleUpdate {
	return tv.updates
}

func (tv *textView) Parse(t *template.Template) (string, error) {
	_, err := t.Parse(`{{ define "text" }}<p id="text">{{ . }}</p>{{ end }}`)
	return "text", err
}

func receive(updates <-chan []EleUpdate) []EleUpdate {
	select {
	case update := <-updates:
		return update
	case <-time.After(5 * time.Second):
		So("no update received", ShouldBeEmpty)
	}
	return nil
}

func TestViewBuilder(t *testing.T) {
	Convey("When building views", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		input := make(chan int)

		Convey("Every view receives each converted item", func() {
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, strconv.Itoa).
				WithView(newTextView).
				WithView(newTextView).
				Build()
			So(err, ShouldBeNil)
			So(views, ShouldHaveLength, 2)

			go func() {
				select {
				case input <- 42:
				case <-ctx.Done():
				}
			}()
			for _, view := range views {
				update := receive(view.Updates())
				So(update, ShouldResemble, []EleUpdate{
					{EleId: "text", Ops: []Op{{Key: "textContent", Value: "42"}}},
				})
			}
		})

		Convey("Building without views fails", func() {
			_, err := NewViewBuilder[int, string]().
				WithModel(input, strconv.Itoa).
				Build()
			So(err, ShouldEqual, ErrNoViews)
		})

		Convey("Building without a model fails", func() {
			_, err := NewViewBuilder[int, string]().
				WithView(newTextView).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})
	})
}
