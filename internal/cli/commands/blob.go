package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/pkg/blob"
	"github.com/spf13/cobra"
)

// NewBlobCommand creates the blob command group.
func NewBlobCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blob",
		Short: "Convert data URLs to binary",
	}
	cmd.AddCommand(newBlobDecodeCommand())
	return cmd
}

// BlobDecodeOptions holds options for blob decode.
type BlobDecodeOptions struct {
	Out  string
	MIME string
}

func newBlobDecodeCommand() *cobra.Command {
	opts := &BlobDecodeOptions{}
	cmd := &cobra.Command{
		Use:   "decode [data-url | @file | -]",
		Short: "Decode a base64 data URL into a file",
		Long: `Decode a base64 data URL (for example a cropped avatar) into raw bytes.

The input is the data URL itself, @path to read it from a file, or - (the
default) to read it from stdin. The MIME type is taken from the URL unless
--mime overrides it.`,
		Example: `  goadmin blob decode 'data:image/png;base64,AAAA' -o avatar.png
  goadmin blob decode @avatar.txt -o avatar.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) > 0 {
				src = args[0]
			}
			return runBlobDecode(cmd, src, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Out, "out", "O", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.MIME, "mime", "", "MIME type to tag the blob with")
	return cmd
}

func runBlobDecode(cmd *cobra.Command, src string, opts *BlobDecodeOptions) error {
	cc := NewCommandContextWithoutBackend(cmd)

	data, err := readDataURL(cmd, src)
	if err != nil {
		return err
	}
	mime := opts.MIME
	if mime == "" {
		mime = blob.MIMEOf(data)
	}
	b, err := blob.FromDataURL(data, mime)
	if err != nil {
		return fmt.Errorf("failed to decode data url: %w", err)
	}

	if opts.Out == "" {
		_, err := b.WriteTo(cmd.OutOrStdout())
		return err
	}

	f, err := os.Create(opts.Out) //nolint:gosec // G304: output path chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.Out, err)
	}
	if _, err := b.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", opts.Out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"file": opts.Out, "type": b.Type, "size": b.Size()})
	}
	r.Success(fmt.Sprintf("Wrote %d bytes (%s) to %s", b.Size(), b.Type, opts.Out))
	return nil
}

func readDataURL(cmd *cobra.Command, src string) (string, error) {
	switch {
	case src == "-":
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	case strings.HasPrefix(src, "@"):
		raw, err := os.ReadFile(src[1:]) //nolint:gosec // G304: input path chosen by the user
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", src[1:], err)
		}
		return strings.TrimSpace(string(raw)), nil
	default:
		return src, nil
	}
}
