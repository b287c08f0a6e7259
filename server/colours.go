package server

import (
	"fmt"

	"github.com/fatih/color"
)

var methodColors = map[string]*color.Color{
	"GET":     color.New(color.FgGreen),
	"POST":    color.New(color.FgBlue),
	"PUT":     color.New(color.FgCyan),
	"DELETE":  color.New(color.FgYellow),
	"PATCH":   color.New(color.FgMagenta),
	"OPTIONS": color.New(color.FgHiBlack),
}

var (
	defaultMethodColor = color.New(color.FgHiBlack)
	errorColor         = color.New(color.FgRed)
)

// colourMethod pads the method to a fixed width and colours it
func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if c, ok := methodColors[method]; ok {
		return c.Sprint(paddedMethod)
	}
	return defaultMethodColor.Sprint(paddedMethod)
}
