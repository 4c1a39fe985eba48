package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is anything the panel can lay out.
type Widget interface {
	Update(p Pointer)
	Draw(screen *ebiten.Image)
	Height() float64
	// MoveTo places the widget at y, used when the panel scrolls.
	MoveTo(y float64)
}

type sliderWidget struct{ *Slider }

func (s sliderWidget) Height() float64  { return s.H + 25 }
func (s sliderWidget) MoveTo(y float64) { s.Y = y }

type checkboxWidget struct{ *Checkbox }

func (c checkboxWidget) Height() float64  { return c.Size + 5 }
func (c checkboxWidget) MoveTo(y float64) { c.Y = y }

type buttonWidget struct{ *Button }

func (b buttonWidget) Height() float64  { return b.Button.Height + 20 }
func (b buttonWidget) MoveTo(y float64) { b.Y = y }

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	labelHeight   = 15.0
)

// Panel stacks widgets in titled sections inside a scrollable box.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	widgets  []Widget
	labels   []string
	sections []section
}

type section struct {
	title      string
	start, end int
}

// NewPanel creates an empty panel.
func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section; widgets added next belong to it.
func (p *Panel) AddSection(title string) {
	p.EndSection()
	p.sections = append(p.sections, section{title: title, start: len(p.widgets), end: -1})
}

// EndSection closes the current section.
func (p *Panel) EndSection() {
	if n := len(p.sections); n > 0 && p.sections[n-1].end < 0 {
		p.sections[n-1].end = len(p.widgets)
	}
}

func (p *Panel) add(label string, w Widget) {
	if len(p.sections) == 0 || p.sections[len(p.sections)-1].end >= 0 {
		p.AddSection("")
	}
	p.widgets = append(p.widgets, w)
	p.labels = append(p.labels, label)
}

// AddSlider appends a slider under label.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, p.Y+p.nextOffset()+labelHeight, p.Width-20, label, min, max, value)
	p.add(label, sliderWidget{s})
	return s
}

// AddCheckbox appends a checkbox under label.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, p.Y+p.nextOffset()+labelHeight, label, value)
	p.add(label, checkboxWidget{c})
	return c
}

// AddButton appends a full-width button.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, p.Y+p.nextOffset()+labelHeight, p.Width-20, 18, label, onClick)
	p.add("", buttonWidget{b})
	return b
}

// nextOffset is the y offset, from the panel top, of the next widget.
func (p *Panel) nextOffset() float64 {
	offset := titleHeight + float64(len(p.sections))*sectionHeight
	if n := len(p.sections); n == 0 || p.sections[n-1].end >= 0 {
		// the widget will open an implicit section
		offset += sectionHeight
	}
	for _, w := range p.widgets {
		offset += w.Height()
	}
	return offset
}

// ContentHeight is the height of everything in the panel, unscrolled.
func (p *Panel) ContentHeight() float64 {
	h := titleHeight + float64(len(p.sections))*sectionHeight
	for _, w := range p.widgets {
		h += w.Height()
	}
	return h
}

// Scroll moves the content by dy wheel steps, clamped to the content.
func (p *Panel) Scroll(dy float64) {
	p.ScrollOffset -= dy * 20
	maxScroll := max(p.ContentHeight()-p.Height+10, 0)
	p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
}

// Contains reports whether the pointer is over the panel, so clicks there
// are not forwarded to the game.
func (p *Panel) Contains(ptr Pointer) bool {
	return ptr.In(p.X, p.Y, p.Width, p.Height)
}

// Update lays the widgets out for the current scroll and feeds them the pointer.
func (p *Panel) Update(ptr Pointer) {
	p.layout(nil)
	for _, w := range p.widgets {
		w.Update(ptr)
	}
}

// layout walks sections and widgets at their scrolled positions, calling
// draw when non-nil for every visible one.
func (p *Panel) layout(draw func(kind int, label string, y float64, w Widget)) {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if draw != nil && p.visible(y) {
			draw(0, s.title, y, nil)
		}
		y += sectionHeight
		end := s.end
		if end < 0 {
			end = len(p.widgets)
		}
		for i := s.start; i < end; i++ {
			w := p.widgets[i]
			w.MoveTo(y + labelHeight)
			if draw != nil && p.visible(y) {
				draw(1, p.labels[i], y, w)
			}
			y += w.Height()
		}
	}
}

func (p *Panel) visible(y float64) bool {
	return y >= p.Y && y <= p.Y+p.Height-sectionHeight
}

// Draw renders the panel and its visible widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	p.layout(func(kind int, label string, y float64, w Widget) {
		if kind == 0 {
			if label == "" {
				return
			}
			vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20, color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, label, int(p.X+10), int(y+3))
			return
		}
		if label != "" {
			ebitenutil.DebugPrintAt(screen, label, int(p.X+10), int(y))
		}
		w.Draw(screen)
	})
}
