package html2pdf

import "github.com/go-rod/rod/lib/proto"

// buildPrintOptions maps a format and orientation to Chrome print
// parameters. Margins are always zero and backgrounds are printed.
func buildPrintOptions(format PageFormat, orientation Orientation) *proto.PagePrintToPDF {
	size, ok := format.size()
	if !ok {
		size = paperSizes[DefaultPageFormat]
	}
	zero := 0.0
	return &proto.PagePrintToPDF{
		Landscape:       orientation == Landscape,
		PrintBackground: true,
		PaperWidth:      floatPtr(size.Width),
		PaperHeight:     floatPtr(size.Height),
		MarginTop:       &zero,
		MarginBottom:    &zero,
		MarginLeft:      &zero,
		MarginRight:     &zero,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
