package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/longkey1/chatpad/internal/chatpad/config"
	"github.com/longkey1/chatpad/internal/chatpad/image"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	imageSize string
	imageOut  string
)

// imagesCmd represents the images command
var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Generate and manage images",
	Long: `Generate images from a text prompt and manage the generated images.

Images are kept in a local database and listed oldest first.`,
}

// imagesGenerateCmd represents the images generate command
var imagesGenerateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate an image from a prompt",
	Long: `Generate one image from a text prompt and store it.

Sizes: small (264x264), medium (512x512, default), large (1024x1024).
Use --output to also write the image to a file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store, closeStore, err := openImages(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		promptText := strings.Join(args, " ")
		fmt.Fprintln(os.Stderr, "Generating image...")
		img, err := store.Generate(ctx, promptText, imageSize)
		if err != nil {
			return err
		}

		if img.ID == 0 {
			fmt.Fprintln(os.Stderr, "Warning: the image could not be saved to the image database")
		} else {
			fmt.Printf("Image %d generated (%s).\n", img.ID, img.Size)
		}

		if imageOut != "" {
			path, err := img.Save(imageOut)
			if err != nil {
				return fmt.Errorf("saving image: %w", err)
			}
			fmt.Printf("Saved to %s\n", path)
		} else if img.ID != 0 {
			fmt.Printf("Save it with:\n  chatpad images save %d\n", img.ID)
		}
		return nil
	},
}

// imagesListCmd represents the images list command
var imagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated images",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store, closeStore, err := openImages(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		images := store.ListAll()
		if len(images) == 0 {
			fmt.Println("No images found.")
			fmt.Println("\nGenerate one with:")
			fmt.Println("  chatpad images generate \"your prompt\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSIZE\tCREATED\tPROMPT")
		fmt.Fprintln(w, "--\t----\t-------\t------")
		for _, img := range images {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				img.ID,
				img.Size,
				img.CreatedAt.Format("2006-01-02 15:04"),
				truncate(img.Prompt, 60),
			)
		}
		w.Flush()
		return nil
	},
}

// imagesDeleteCmd represents the images delete command
var imagesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a generated image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseImageID(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store, closeStore, err := openImages(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting image: %w", err)
		}

		fmt.Printf("Image %d deleted successfully.\n", id)
		return nil
	},
}

// imagesSaveCmd represents the images save command
var imagesSaveCmd = &cobra.Command{
	Use:   "save <id> [path]",
	Short: "Write a generated image to a PNG file",
	Long: `Decode a stored image and write it to a file.

The default path is ./` + image.DefaultFileName + `. If path is a directory the
file is created inside it.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseImageID(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store, closeStore, err := openImages(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		img, err := store.Get(id)
		if err != nil {
			return err
		}

		var target string
		if len(args) > 1 {
			target = args[1]
		}
		path, err := img.Save(target)
		if err != nil {
			return fmt.Errorf("saving image: %w", err)
		}

		logger.Debug("image saved", zap.Int64("id", id), zap.String("path", path))
		fmt.Printf("Saved to %s\n", path)
		return nil
	},
}

func parseImageID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid image ID: %s", s)
	}
	return id, nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(imagesCmd)
	imagesCmd.AddCommand(imagesGenerateCmd)
	imagesCmd.AddCommand(imagesListCmd)
	imagesCmd.AddCommand(imagesDeleteCmd)
	imagesCmd.AddCommand(imagesSaveCmd)

	imagesGenerateCmd.Flags().StringVarP(&imageSize, "size", "s", image.DefaultSize, "Image size: small, medium or large")
	imagesGenerateCmd.Flags().StringVarP(&imageOut, "output", "o", "", "Also write the image to this file")
}
