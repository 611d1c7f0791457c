package ui

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/qeesung/image2ascii/convert"
)

// SpriteModel shows one Pokémon's sprite as ANSI art.
type SpriteModel struct {
	pokemon string
	shiny   bool
	img     image.Image
	err     error
	colored bool

	// cache of the last render, keyed by size
	art        string
	artW, artH int
}

// NewSpriteModel creates a sprite screen that is still loading.
func NewSpriteModel(pokemon string, shiny bool) *SpriteModel {
	return &SpriteModel{
		pokemon: pokemon,
		shiny:   shiny,
		colored: supportsColor(),
	}
}

// Pokemon returns the name shown on the screen.
func (m *SpriteModel) Pokemon() string {
	return m.pokemon
}

// SetImage stores the decoded sprite.
func (m *SpriteModel) SetImage(img image.Image) {
	m.img = img
	m.err = nil
	m.art = ""
}

// SetError records why the sprite could not be shown.
func (m *SpriteModel) SetError(err error) {
	m.err = err
}

// View renders the sprite centered in the content area.
func (m *SpriteModel) View(width, height int) string {
	title := LabelStyle.Render(m.pokemon)
	if m.shiny {
		title += " " + SuccessStyle.Render("✦ shiny!")
	}

	var body string
	switch {
	case m.err != nil:
		body = ErrorStyle.Render(fmt.Sprintf("Sprite unavailable: %v", m.err))
	case m.img == nil:
		body = HelpDescStyle.Render("Loading sprite...")
	default:
		w, h := max(8, width-8), max(4, height-4)
		if m.art == "" || m.artW != w || m.artH != h {
			m.art = convertToASCII(m.img, w, h, m.colored)
			m.artW, m.artH = w, h
		}
		body = m.art
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, title, "", body))
}

// convertToASCII converts an image to ASCII art that fits the target box
// while keeping the sprite's proportions.
func convertToASCII(img image.Image, targetWidth, targetHeight int, colored bool) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.Colored = colored
	opts.Ratio = 1

	b := img.Bounds()
	if b.Dx() > 0 && b.Dy() > 0 {
		// Terminal cells are about twice as tall as they are wide.
		w := targetWidth
		h := w * b.Dy() / b.Dx() / 2
		if h > targetHeight {
			h = targetHeight
			w = h * 2 * b.Dx() / b.Dy()
		}
		opts.FixedWidth = max(1, w)
		opts.FixedHeight = max(1, h)
	} else {
		opts.FixedWidth = targetWidth
		opts.FixedHeight = targetHeight
	}

	return strings.TrimRight(converter.Image2ASCIIString(img, &opts), "\n")
}

func supportsColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
