// Labelreview steps through a list of segmented labels, shows each one's
// neighborhood and records a three-way verdict per label.
//
// Usage:
//
//	labelreview init-config                   # write labelreview.yaml
//	labelreview review -l labels.yaml         # open the review window
//	labelreview boxes -l labels.yaml -p 10    # print padded bounding boxes
//	labelreview export -l labels.yaml -o out  # render crops to PNG
//	labelreview summary labels_res.yaml       # count verdicts
package main

import (
	"os"

	"labelreview/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
