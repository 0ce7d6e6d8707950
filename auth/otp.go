package auth

import "strings"

// OTPLength is the number of digits in a one-time code
const OTPLength = 6

// OTPInput models the six single-digit entry boxes of the OTP screen. The
// UI renders the boxes; this type owns the focus and redistribution rules so
// they can be tested without a screen:
//
//   - typing or pasting distributes one digit per box starting at the
//     focused box
//   - focus lands on the next empty box afterwards, or the keyboard is
//     dismissed when all six boxes are filled
//   - backspace clears the focused box, or moves focus back one box when
//     the focused box is already empty
type OTPInput struct {
	boxes    [OTPLength]byte // '1'-'9' and '0'; 0 means empty
	focus    int
	keyboard bool
}

// NewOTPInput creates an empty input with the first box focused and the
// keyboard up
func NewOTPInput() *OTPInput {
	return &OTPInput{keyboard: true}
}

// Focus moves focus to box i and raises the keyboard. Out-of-range values
// are clamped.
func (o *OTPInput) Focus(i int) {
	if i < 0 {
		i = 0
	}
	if i >= OTPLength {
		i = OTPLength - 1
	}
	o.focus = i
	o.keyboard = true
}

// Focused returns the index of the focused box
func (o *OTPInput) Focused() int {
	return o.focus
}

// KeyboardVisible reports whether the keyboard is up. It goes down once all
// six boxes are filled.
func (o *OTPInput) KeyboardVisible() bool {
	return o.keyboard
}

// Paste distributes the digits of s across the boxes starting at the focused
// box. Non-digit characters are dropped first, so pasting "123 456" or a
// code copied with whitespace works. Extra digits beyond the last box are
// discarded.
func (o *OTPInput) Paste(s string) {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) == 0 {
		return
	}

	pos := o.focus
	for _, d := range digits {
		if pos >= OTPLength {
			break
		}
		o.boxes[pos] = d
		pos++
	}

	o.settleFocus(pos)
}

// Type enters a single digit at the focused box
func (o *OTPInput) Type(d byte) {
	o.Paste(string(d))
}

// Backspace clears the focused box, or moves focus to the previous box when
// the focused box is already empty
func (o *OTPInput) Backspace() {
	if o.boxes[o.focus] != 0 {
		o.boxes[o.focus] = 0
		return
	}
	if o.focus > 0 {
		o.focus--
	}
	o.keyboard = true
}

// settleFocus places focus on the next empty box at or after pos, wrapping
// to earlier gaps, and dismisses the keyboard when every box is filled
func (o *OTPInput) settleFocus(pos int) {
	for i := pos; i < OTPLength; i++ {
		if o.boxes[i] == 0 {
			o.focus = i
			o.keyboard = true
			return
		}
	}
	for i := 0; i < OTPLength; i++ {
		if o.boxes[i] == 0 {
			o.focus = i
			o.keyboard = true
			return
		}
	}
	// All six filled: keyboard goes down, focus rests on the last box
	o.focus = OTPLength - 1
	o.keyboard = false
}

// Code returns the entered code and whether all six boxes are filled
func (o *OTPInput) Code() (string, bool) {
	var b strings.Builder
	for _, d := range o.boxes {
		if d == 0 {
			return "", false
		}
		b.WriteByte(d)
	}
	return b.String(), true
}

// Boxes returns the current box contents for rendering; empty boxes are ""
func (o *OTPInput) Boxes() [OTPLength]string {
	var out [OTPLength]string
	for i, d := range o.boxes {
		if d != 0 {
			out[i] = string(d)
		}
	}
	return out
}

// Clear empties every box and refocuses the first one
func (o *OTPInput) Clear() {
	*o = OTPInput{keyboard: true}
}
