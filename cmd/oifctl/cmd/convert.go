package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/oif2fits.go/pkg/fits"
	"github.com/jpfielding/oif2fits.go/pkg/oif"
	"github.com/jpfielding/oif2fits.go/pkg/util"
)

// NewConvertCmd creates the convert cobra command
func NewConvertCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert legacy OIF images to FITS",
		Long:  "Converts each .imh header (with its same-root .pix companion) into a .fits file. A failed file is reported and the batch continues with the next.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("no input files; pass one or more .imh paths")
			}
			opts := oif.Options{}
			opts.ForceSwap, _ = cmd.Flags().GetBool("swap")
			opts.CollectFindings, _ = cmd.Flags().GetBool("warnings")
			listOnly, _ := cmd.Flags().GetBool("list")
			outDir, _ := cmd.Flags().GetString("out-dir")

			failed := 0
			for _, path := range args {
				if err := convertOne(ctx, path, outDir, listOnly, opts); err != nil {
					slog.ErrorContext(ctx, "conversion failed", "file", path, "error", err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("swap", "s", false, "force byte swapping, overriding header inference")
	pf.BoolP("warnings", "w", false, "collect and print validation warnings")
	pf.BoolP("list", "l", false, "describe files rather than convert")
	pf.String("out-dir", ".", "directory for output .fits files")
	return cmd
}

func convertOne(ctx context.Context, hdrPath, outDir string, listOnly bool, opts oif.Options) error {
	root, ok := imageRoot(hdrPath)
	if !ok {
		return fmt.Errorf("%s: not a .imh header file", hdrPath)
	}
	pixPath, err := findPixFile(root)
	if err != nil {
		return err
	}

	img, err := oif.DecodeFiles(hdrPath, pixPath, opts)
	if err != nil {
		return err
	}
	base := filepath.Base(hdrPath)

	if listOnly {
		printSummary(hdrPath, img)
		return nil
	}

	out, err := img.ToFITS(base)
	if err != nil {
		return err
	}
	findings := &img.Findings
	if !opts.CollectFindings {
		findings = nil
	}
	dest := filepath.Join(outDir, filepath.Base(root)+".fits")
	n, err := fits.WriteFile(dest, out, findings)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "converted", "input", hdrPath, "output", dest, "bytes", n)

	if opts.CollectFindings {
		for _, f := range img.Findings {
			fmt.Fprintf(os.Stderr, "%s: %s\n", base, f)
		}
	}
	return nil
}

// imageRoot strips the header extension, accepting gzipped headers too.
func imageRoot(path string) (string, bool) {
	for _, ext := range []string{".imh", ".imh.gz"} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext), true
		}
	}
	return "", false
}

// findPixFile locates the companion pixel store next to the header.
func findPixFile(root string) (string, error) {
	for _, ext := range []string{".pix", ".pix.gz"} {
		if p := root + ext; exists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("no companion pixel file for %s", root+".imh")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// printSummary prints one line per file in the style of the original tool,
// plus a content digest for spotting duplicates across archives.
func printSummary(path string, img *oif.Image) {
	d := img.Descriptor
	min, max, mean := img.Pixels.Stats()
	dims := make([]string, len(img.Pixels.Shape))
	for i, l := range img.Pixels.Shape {
		dims[i] = fmt.Sprint(l)
	}
	fmt.Printf("%20s[%s][%s]\t%s\n", path, strings.Join(dims, ","), d.Pixtype, d.Title)
	fmt.Printf("\t\tmean: %g  min: %g  max: %g  xxh64: %s\n", mean, min, max, util.Xxh64Hex(img.Pixels.Data))
}
