// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
// The palette is warm: gold accents on espresso in the dark, amber on cream
// in the light.

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Gold - Primary accent, titles, focus, selected rows
var Gold = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FACC15"}

// GoldDeep - Button backgrounds, assistant bubble border
var GoldDeep = lipgloss.AdaptiveColor{Light: "#92400E", Dark: "#CA8A04"}

// GoldDim - Unfocused borders, separators
var GoldDim = lipgloss.AdaptiveColor{Light: "#FCD34D", Dark: "#5C4A1A"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, delete confirmation, critical counter
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, near-limit counter
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Emerald - Success toasts, completed checkmarks
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Sky - Informational toasts, tool call badges
var Sky = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#7DD3FC"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFBEB", Dark: "#1A1410"}

// SurfaceRaised - Cards, modals, bubbles
var SurfaceRaised = lipgloss.AdaptiveColor{Light: "#FEF3C7", Dark: "#2A1F1A"}

// Overlay - Borders and subtle separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E7D8B0", Dark: "#3A2E24"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#3F2A14", Dark: "#FEF9C3"}

// TextSecondary - Descriptions, labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#78583A", Dark: "#D6CDA4"}

// TextMuted - Dates, hints, completed tasks
var TextMuted = lipgloss.AdaptiveColor{Light: "#A8927A", Dark: "#7D7258"}

// TextInverse - Text on gold buttons
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFBEB", Dark: "#1A1410"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// Shapes back up color for colorblind users.
const (
	CheckboxDone    = "[x]"
	CheckboxPending = "[ ]"
	CursorMarker    = ">"
	IconError       = "✗"
	IconSuccess     = "✓"
	IconInfo        = "•"
	IconWarning     = "!"
)
