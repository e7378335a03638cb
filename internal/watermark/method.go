package watermark

import (
	"fmt"
	"strings"
)

// Method selects how masked regions are erased.
type Method string

const (
	// MethodInpaint reconstructs regions from their surroundings. Default.
	MethodInpaint Method = "inpaint"
	// MethodBlur Gaussian-blurs each region in place.
	MethodBlur Method = "blur"
	// MethodFill paints each region with the mean color of a ring around it.
	MethodFill Method = "fill"
	// MethodClone copies the most similar patch found elsewhere in the image.
	MethodClone Method = "clone"
)

// Methods lists every supported method in menu order.
var Methods = []Method{MethodInpaint, MethodBlur, MethodFill, MethodClone}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodInpaint, MethodBlur, MethodFill, MethodClone:
		return true
	}
	return false
}

// ParseMethod converts user input into a Method. Names are matched
// case-insensitively; the menu numbers "1" to "4" are accepted as well.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "1":
		return MethodInpaint, nil
	case "2":
		return MethodBlur, nil
	case "3":
		return MethodFill, nil
	case "4":
		return MethodClone, nil
	}

	m := Method(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q (want one of inpaint, blur, fill, clone)", ErrUnsupportedMethod, s)
	}
	return m, nil
}
