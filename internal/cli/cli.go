// Package cli implements catalogctl, the command-line views of the catalog.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"productcatalog/internal/models"
	"productcatalog/internal/services"
	"productcatalog/pkg/client"

	"github.com/spf13/pflag"
)

const usage = `Usage: catalogctl <command> [flags]

Commands:
  list     List products (--search, --sort name|price|created_at, --order asc|desc)
  get      Show one product
  create   Create a product (--name, --price, --description, --image-file | --image-url)
  edit     Edit a product (--name, --price, --description, --image-file | --image-url | --remove-image)
  delete   Delete a product (--yes skips the confirmation)
  upload   Upload an image and print its public URL
  token    Print a write token (--subject)
`

// Runner executes catalogctl commands.
type Runner struct {
	Client *client.Client
	Auth   *services.AuthService
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

// errUsage marks a command line that could not be parsed.
var errUsage = errors.New("usage")

// Run executes args and returns the process exit code.
func (r *Runner) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(r.Err, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "list":
		err = r.list(ctx, args[1:])
	case "get":
		err = r.get(ctx, args[1:])
	case "create":
		err = r.create(ctx, args[1:])
	case "edit":
		err = r.edit(ctx, args[1:])
	case "delete":
		err = r.delete(ctx, args[1:])
	case "upload":
		err = r.upload(ctx, args[1:])
	case "token":
		err = r.token(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(r.Out, usage)
		return 0
	default:
		fmt.Fprintf(r.Err, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, pflag.ErrHelp):
		return 2
	default:
		fmt.Fprintf(r.Err, "Error: %v\n", err)
		return 1
	}
}

func (r *Runner) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(r.Err)
	return fs
}

func (r *Runner) parse(fs *pflag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, errUsage
	}
	if fs.NArg() != positional {
		fmt.Fprintf(r.Err, "%s: expected %d argument(s), got %d\n", fs.Name(), positional, fs.NArg())
		return nil, errUsage
	}
	return fs.Args(), nil
}

func (r *Runner) list(ctx context.Context, args []string) error {
	q := client.DefaultQuery()
	fs := r.flagSet("list")
	fs.StringVarP(&q.Search, "search", "s", "", "match name or description")
	fs.StringVar(&q.SortBy, "sort", q.SortBy, "sort by name, price or created_at")
	fs.StringVar(&q.Order, "order", q.Order, "asc or desc")
	if _, err := r.parse(fs, args, 0); err != nil {
		return err
	}
	if !client.ValidSortField(q.SortBy) || !client.ValidOrder(q.Order) {
		fmt.Fprintf(r.Err, "list: invalid sort %q or order %q\n", q.SortBy, q.Order)
		return errUsage
	}

	products, err := r.Client.ListProducts(ctx)
	if err != nil {
		return err
	}
	shown := client.FilterAndSort(products, q)

	fmt.Fprintf(r.Out, "%d of %d products\n", len(shown), len(products))
	if len(shown) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCREATED")
	for _, p := range shown {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, formatPrice(p.Price), p.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func (r *Runner) get(ctx context.Context, args []string) error {
	pos, err := r.parse(r.flagSet("get"), args, 1)
	if err != nil {
		return err
	}
	product, err := r.Client.GetProduct(ctx, pos[0])
	if err != nil {
		return err
	}
	r.printProduct(product)
	return nil
}

func (r *Runner) create(ctx context.Context, args []string) error {
	var form ProductForm
	var imageFile string
	fs := r.flagSet("create")
	fs.StringVar(&form.Name, "name", "", "product name")
	fs.Float64Var(&form.Price, "price", 0, "product price")
	fs.StringVar(&form.Description, "description", "", "product description")
	fs.StringVar(&imageFile, "image-file", "", "local image to upload")
	fs.StringVar(&form.Image, "image-url", "", "existing image URL")
	if _, err := r.parse(fs, args, 0); err != nil {
		return err
	}
	if errs := form.Validate(); len(errs) > 0 {
		return FormError(errs)
	}
	if err := r.attachImage(ctx, imageFile, &form.Image); err != nil {
		return err
	}

	product, err := r.Client.CreateProduct(ctx, client.CreateProductInput{
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Image:       form.Image,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "Created product %s\n", product.ID)
	r.printProduct(product)
	return nil
}

func (r *Runner) edit(ctx context.Context, args []string) error {
	var name, description, imageURL, imageFile string
	var price float64
	var removeImage bool
	fs := r.flagSet("edit")
	fs.StringVar(&name, "name", "", "new name")
	fs.Float64Var(&price, "price", 0, "new price")
	fs.StringVar(&description, "description", "", "new description")
	fs.StringVar(&imageFile, "image-file", "", "local image to upload")
	fs.StringVar(&imageURL, "image-url", "", "existing image URL")
	fs.BoolVar(&removeImage, "remove-image", false, "clear the product image")
	pos, err := r.parse(fs, args, 1)
	if err != nil {
		return err
	}
	id := pos[0]

	existing, err := r.Client.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	form := ProductForm{Name: existing.Name, Price: existing.Price, Description: existing.Description, Image: existing.Image}
	var in client.UpdateProductInput
	if fs.Changed("name") {
		form.Name = name
	}
	if fs.Changed("price") {
		form.Price = price
	}
	if errs := form.Validate(); len(errs) > 0 {
		return FormError(errs)
	}
	if fs.Changed("name") {
		in.Name = &form.Name
	}
	if fs.Changed("price") {
		in.Price = &form.Price
	}
	if fs.Changed("description") {
		in.Description = &description
	}

	switch {
	case removeImage:
		empty := ""
		in.Image = &empty
	case fs.Changed("image-file") || fs.Changed("image-url"):
		image := imageURL
		if err := r.attachImage(ctx, imageFile, &image); err != nil {
			return err
		}
		in.Image = &image
	}

	product, err := r.Client.UpdateProduct(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "Updated product %s\n", product.ID)
	r.printProduct(product)
	return nil
}

func (r *Runner) delete(ctx context.Context, args []string) error {
	var yes bool
	fs := r.flagSet("delete")
	fs.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	pos, err := r.parse(fs, args, 1)
	if err != nil {
		return err
	}

	if !yes && !r.confirm("Are you sure you want to delete this product?") {
		fmt.Fprintln(r.Out, "Aborted")
		return nil
	}

	message, err := r.Client.DeleteProduct(ctx, pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(r.Out, message)
	return nil
}

func (r *Runner) upload(ctx context.Context, args []string) error {
	pos, err := r.parse(r.flagSet("upload"), args, 1)
	if err != nil {
		return err
	}
	var imageURL string
	if err := r.attachImage(ctx, pos[0], &imageURL); err != nil {
		return err
	}
	fmt.Fprintln(r.Out, imageURL)
	return nil
}

func (r *Runner) token(args []string) error {
	var subject string
	fs := r.flagSet("token")
	fs.StringVar(&subject, "subject", "catalogctl", "token subject")
	if _, err := r.parse(fs, args, 0); err != nil {
		return err
	}
	token, err := r.Auth.IssueToken(subject)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.Out, token)
	return nil
}

// attachImage uploads path when set and stores the public URL in image.
func (r *Runner) attachImage(ctx context.Context, path string, image *string) error {
	if path == "" {
		return nil
	}
	file, err := LoadImage(path)
	if err != nil {
		return err
	}
	url, err := r.Client.UploadFile(ctx, file.Name, file.Type, file.Data)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}
	*image = url
	return nil
}

func (r *Runner) confirm(prompt string) bool {
	fmt.Fprintf(r.Out, "%s [y/N] ", prompt)
	if r.In == nil {
		return false
	}
	answer, _ := bufio.NewReader(r.In).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (r *Runner) printProduct(p *models.Product) {
	tw := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Price:\t%s\n", formatPrice(p.Price))
	if p.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	}
	if p.Image != "" {
		fmt.Fprintf(tw, "Image:\t%s\n", p.Image)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Updated:\t%s\n", p.UpdatedAt.Format(time.RFC3339))
	tw.Flush()
}

func formatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}
