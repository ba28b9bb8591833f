package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/ferretbit/tinygo-deskpet/pkg/face"
)

func TestColorOf(t *testing.T) {
	cases := []struct {
		pix  uint16
		want tcell.Color
	}{
		{0x0000, tcell.NewRGBColor(0, 0, 0)},
		{0xFFFF, tcell.NewRGBColor(255, 255, 255)},
		{0xF800, tcell.NewRGBColor(255, 0, 0)},
		{0x07E0, tcell.NewRGBColor(0, 255, 0)},
		{0x001F, tcell.NewRGBColor(0, 0, 255)},
	}
	for _, tc := range cases {
		if got := colorOf(tc.pix); got != tc.want {
			t.Errorf("colorOf(0x%04x): expected %v, got %v", tc.pix, tc.want, got)
		}
	}
}

func TestPushFrameFillsScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(40, 20)

	sink := &termSink{screen: screen}

	// Solid red frame
	pix := make([]uint16, 64*64)
	for i := range pix {
		pix[i] = 0xF800
	}
	sink.PushFrame(pix, 64, 64)

	mainc, _, style, _ := screen.GetContent(10, 10)
	if mainc != '▀' {
		t.Errorf("Expected half-block glyph, got %q", mainc)
	}
	fg, bg, _ := style.Decompose()
	red := tcell.NewRGBColor(255, 0, 0)
	if fg != red || bg != red {
		t.Errorf("Expected solid red cell, got fg=%v bg=%v", fg, bg)
	}
}

func TestPushFrameSamplesTopAndBottom(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(10, 5)

	sink := &termSink{screen: screen}

	// Top half white, bottom half blue
	const w, h = 10, 10
	pix := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if y < h/2 {
				pix[y*w+x] = 0xFFFF
			} else {
				pix[y*w+x] = 0x001F
			}
		}
	}
	sink.PushFrame(pix, w, h)

	// Middle cell row straddles the boundary
	_, _, topStyle, _ := screen.GetContent(5, 0)
	fg, _, _ := topStyle.Decompose()
	if fg != tcell.NewRGBColor(255, 255, 255) {
		t.Errorf("Top of screen should be white, got %v", fg)
	}

	_, _, botStyle, _ := screen.GetContent(5, 4)
	_, bg, _ := botStyle.Decompose()
	if bg != tcell.NewRGBColor(0, 0, 255) {
		t.Errorf("Bottom of screen should be blue, got %v", bg)
	}
}

func TestEngineRendersToSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(60, 30)

	clock := int64(0)
	engine, err := face.New(face.DefaultConfig(), &termSink{screen: screen}, func() int64 { return clock }, nil)
	if err != nil {
		t.Fatal(err)
	}
	engine.SetEnabled(true)

	clock += 25
	engine.Update()

	// The background color should appear somewhere near a corner
	_, _, style, _ := screen.GetContent(0, 0)
	fg, _, _ := style.Decompose()
	if fg == tcell.ColorDefault {
		t.Error("Screen should be painted after an engine update")
	}
}
