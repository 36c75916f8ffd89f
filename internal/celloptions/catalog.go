package celloptions

// Option is one documented cell option.
type Option struct {
	Key string
	// Doc is the markdown description, one entry per line
	Doc []string
}

// Group is a named section of the catalog.
type Group struct {
	Name    string
	Options []Option
}

// Catalog lists every known cell option grouped the way the Quarto reference
// groups them. Order is significant: it is the order shown in the wizard.
var Catalog = []Group{
	{
		Name:    "Attributes",
		Options: []Option{
			{Key: "label", Doc: []string{"`label` - Unique label for code cell. Used when other code needs to refer to the cell (e.g. for cross references `fig-samples` or `tbl-summary`)."}},
			{Key: "classes", Doc: []string{"`classes` - Classes to apply to cell container."}},
			{Key: "tags", Doc: []string{"`tags` - Array of tags for notebook cell."}},
			{Key: "id", Doc: []string{"`id` - Notebook cell identifier. If no `id` is present, `label` will be used instead. See [Jupyter proposal](https://jupyter.org/enhancement-proposals/62-cell-id/cell-id.html)"}},
		},
	},
	{
		Name:    "Code Output",
		Options: []Option{
			{Key: "eval", Doc: []string{
				"`eval` - Evaluate code cells (if `false` just echos the code into output).",
				"",
				"- `true` (default): evaluate code cell",
				"- `false`: don’t evaluate code cell",
				"- `[...]:` A list of positive or negative line numbers to selectively include or exclude lines (knitr only)",
			}},
			{Key: "echo", Doc: []string{
				"`echo` - Include cell source code in rendered output.",
				"",
				"- `true` (default): include source code",
				"- `false`: do not include code (default in presentation formats lik `beamer`, `revealjs`, `pptx`)",
				"- `fenced`: in addition to echoing, include the cell delimiter as part of the output",
				"- `[...]:` A list of positive or negative line numbers to selectively include or exclude lines (knitr only)",
			}},
			{Key: "code-fold", Doc: []string{
				"`code-fold` - Collapse code into an HTML `<details>` tag so the user can display it on-demand.",
				"",
				"- `true`: collapse code",
				"- `false` (default): do not collapse",
				"- `show`: use the <details> tag, but show the expanded code initially",
			}},
			{Key: "code-summary", Doc: []string{"`code-summary` - Summary text to use for code blocks collapsed using `code-fold`"}},
			{Key: "code-overflow", Doc: []string{"`code-overflow` - Choose overflow strategy (e.g. `scroll`, `wrap`)."}},
			{Key: "code-line-numbers", Doc: []string{
				"`code-line-numbers` - Include line numbers or specify highlight animation (`true` or `false`). For revealjs output only, you can also specify a string to highlight specific lines (and/or animate between sets of highlighted lines).",
				"",
				"Examples:",
				"- Sets of lines are denoted with commas: `3,4,5`",
				"- Ranges can be denoted with dashes and combined with commas: `1-3,5`",
				"- Finally, animation steps are separated by`|5|5-10,12`",
			}},
			{Key: "lst-label", Doc: []string{"`lst-label` - Label for code listing (used for cross references)."}},
			{Key: "lst-cap", Doc: []string{"`lst-cap` - Caption for code listing."}},
			{Key: "tidy", Doc: []string{"`tidy` - `knitr` only: Whether to reformat R code."}},
			{Key: "tidy-opts", Doc: []string{"`tidy-opts` - `knitr` only: List of options to pass to tidy handler."}},
			{Key: "collapse", Doc: []string{"`collapse` - `knitr` only: Collapse all the source and output blocks from one code chunk into a single block."}},
			{Key: "prompt", Doc: []string{"`prompt` - `knitr` only: Whether to add the prompt characters in R code. See prompt and continue on the help page `?base::options`. Note that adding prompts can make it difficult for readers to copy R code from the output, so prompt: false may be a better choice. This option may not work well when the engine is not R."}},
			{Key: "class-source", Doc: []string{"`class-source` - `knitr` only: Class name(s) for source code blocks."}},
			{Key: "attr-source", Doc: []string{"`attr-source` - `knitr` only: Attribute(s) for source code blocks."}},
		},
	},
	{
		Name:    "Cell Output",
		Options: []Option{
			{Key: "output", Doc: []string{
				"`output` - Include code execution results in output.",
				"",
				"- `true`: include results",
				"- `false`: hide results",
				"- `asis`: treat as raw markdown",
			}},
			{Key: "warning", Doc: []string{"`warning` - Include warnings in rendered output."}},
			{Key: "error", Doc: []string{"`error` - Include errors in output(note that this implies that errors executing code will not halt processing of the document)."}},
			{Key: "include", Doc: []string{"`include` - Catch all for preventing any output (code or results) from being included in output."}},
			{Key: "panel", Doc: []string{"`panel` - Panel type for cell output : `tabset`, `input`, `sidebar`, `fill`, `center`."}},
			{Key: "output-location", Doc: []string{
				"`output-location` - Location of output relative to the code that generated it. The possible values are as follows:",
				"",
				"- `default`: Normal flow of the slide after the code",
				"- `fragment`: In a fragment (not visible until you advance)",
				"- `slide`: On a new slide after the curent one",
				"- `column`: In an adjacent column",
				"- `column-fragment`: In an adjacent column (not visible until you advance)",
			}},
			{Key: "message", Doc: []string{"`message` - `knitr` only: Include messages in rendered output. Possible values are `true`, `false`, or `NA`. If `true`, messages are included in the output. If `false`, messages are not included. If `NA`, messages are not included in output but shown in the knitr log to console."}},
			{Key: "results", Doc: []string{"`results` - `knitr` only: How to display text results. Note that this option only applies to normal text output (not warnings, messages, or errors). The possible values are `markup`, `asis`, `hold`, `hide`"}},
			{Key: "comment", Doc: []string{"`comment` - `knitr` only: Prefix to be added before each line of text output. By default, the text output is commented out by ##, so if readers want to copy and run the source code from the output document, they can select and copy everything from the chunk, since the text output is masked in comments (and will be ignored when running the copied text). Set comment: ’’ to remove the default."}},
			{Key: "class-output", Doc: []string{"`class-output` - `knitr` only: Class name(s) for text/console output."}},
			{Key: "attr-output", Doc: []string{"`attr-output` - `knitr` only: Attribute(s) for text/console output."}},
			{Key: "class-warning", Doc: []string{"`class-warning` - `knitr` only: Class name(s) for warning output."}},
			{Key: "attr-warning", Doc: []string{"`attr-warning` - `knitr` only: Attribute(s) for warning output."}},
			{Key: "class-message", Doc: []string{"`class-message` - `knitr` only: Class name(s) for message output."}},
			{Key: "attr-message", Doc: []string{"`attr-message` - `knitr` only: Attribute(s) for message output."}},
			{Key: "class-error", Doc: []string{"`class-error` - `knitr` only: Class name(s) for error output."}},
			{Key: "attr-error", Doc: []string{"`attr-error` - `knitr` only: Attribute(s) for error output."}},
		},
	},
	{
		Name:    "Figures",
		Options: []Option{
			{Key: "fig-cap", Doc: []string{"`fig-cap` - Caption for figure."}},
			{Key: "fig-subcap", Doc: []string{"`fig-subcap` - Subcaptions for figures."}},
			{Key: "fig-link", Doc: []string{"`fig-link` - Hyperlink target for the figure."}},
			{Key: "fig-align", Doc: []string{"`fig-align` - Figure horizontal alignment (`left`, `right`, `center`, `default`)."}},
			{Key: "fig-alt", Doc: []string{"`fig-alt` - Alternative text for images."}},
			{Key: "fig-env", Doc: []string{"`fig-env` - LaTeX environment for figures."}},
			{Key: "fig-pos", Doc: []string{"`fig-pos` - LaTeX figure position (e.g. `H`, or false for none)."}},
			{Key: "fig-scap", Doc: []string{"`fig-scap` - Short caption (used in PDF lists)."}},
			{Key: "fig-format", Doc: []string{"`fig-format` - `knitr` only: Default output format for figures (retina, png, jpeg, svg, or pdf)."}},
			{Key: "fig-dpi", Doc: []string{"`fig-dpi` - `knitr` only: Default DPI for figures."}},
			{Key: "fig-asp", Doc: []string{"`fig-asp` - `knitr` only: The aspect ratio of the plot, i.e., the ratio of height/width. When `fig-asp` is specified, the height of a plot (the option `fig-height`) is calculated from `fig-width` * `fig-asp`."}},
			{Key: "out-width", Doc: []string{"`out-width` - `knitr` only: Width of the plot in the output document, which can be different from its physical fig-width, i.e., plots can be scaled in the output document. When used without a unit, the unit is assumed to be pixels. However, any of the following unit identifiers can be used: px, cm, mm, in, inch and %, for example, 3in, 8cm, 300px or 50%."}},
			{Key: "out-height", Doc: []string{"`out-height` - `knitr` only: Height of the plot in the output document, which can be different from its physical fig-height, i.e., plots can be scaled in the output document. Depending on the output format, this option can take special values. For example, for LaTeX output, it can be 3in, or 8cm; for HTML, it can be 300px."}},
			{Key: "fig-keep", Doc: []string{"`fig-keep` - `knitr` only: How plots in chunks should be kept. Possible values are as follows: `high`, `none`, `all`, `first`, `last` or a numeric vector"}},
			{Key: "fig-show", Doc: []string{"`fig-show` - `knitr` only: How to show/arrange the plots. Possible values are as follows: `asis`, `hold`, `animate`, `hide`."}},
			{Key: "out-extra", Doc: []string{"`out-extra` - `knitr` only: Additional raw LaTeX or HTML options to be applied to figures."}},
			{Key: "external", Doc: []string{"`external` - `knitr` only: Externalize tikz graphics (pre-compile to PDF)."}},
			{Key: "sanitize", Doc: []string{"`sanitize` - `knitr` only: Sanitize tikz graphics (escape special LaTeX characters)."}},
			{Key: "interval", Doc: []string{"`interval` - `knitr` only: Time interval (number of seconds) between animation frames."}},
			{Key: "aniopts", Doc: []string{"`aniopts` - `knitr` only: Extra options for animations; see the documentation of the LaTeX animate package."}},
			{Key: "animation-hook", Doc: []string{"`animation-hook` - `knitr` only: Hook function to create animations in HTML output."}},
		},
	},
	{
		Name:    "Tables",
		Options: []Option{
			{Key: "tbl-cap", Doc: []string{"`tbl-cap` - Table caption."}},
			{Key: "tbl-subcap", Doc: []string{"`tbl-subcap` - Table subcaptions."}},
			{Key: "tbl-colwidths", Doc: []string{
				"`tbl-colwidths` - Apply explicit table column widths for markdown grid tables and pipe tables that are more than `columns` characters wide (72 by default). Some formats (e.g. HTML) do an excellent job automatically sizing table columns and so don’t benefit much from column width specifications. Other formats (e.g. LaTeX) require table column sizes in order to correctly flow longer cell content (this is a major reason why tables > 72 columns wide are assigned explicit widths by Pandoc).",
				"",
				"- `auto`: Apply markdown table column widths except when there is a hyperlink in the table (which tends to throw off automatic calculation of column widths based on the markdown text width of cells). (auto is the default for HTML output formats).",
				"- `true`: Always apply markdown table widths (true is the default for all non-HTML formats).",
				"- ``false`: Never apply markdown table widths.",
				"- An array of numbers (e.g. `[40, 30, 30]`): Array of explicit width percentages.",
			}},
			{Key: "html-table-processing", Doc: []string{"`html-table-processing` - If `none`, don’t touch raw HTML tables."}},
		},
	},
	{
		Name:    "Panel Layout",
		Options: []Option{
			{Key: "layout", Doc: []string{"`layout` - 2D array of widths to layout blocks side-by-side or stacked."}},
			{Key: "layout-ncol", Doc: []string{"`layout-ncol` - Number of layout columns."}},
			{Key: "layout-nrow", Doc: []string{"`layout-nrow` - Number of layout rows."}},
			{Key: "layout-align", Doc: []string{"`layout-align` - Horizontal alignment of layout (left, center, right)."}},
			{Key: "layout-valign", Doc: []string{"`layout-valign` - Vertical alignment of layout (top, center, bottom)."}},
		},
	},
	{
		Name:    "Page Columns",
		Options: []Option{
			{Key: "column", Doc: []string{"`column` - Output column for page layout."}},
			{Key: "fig-column", Doc: []string{"`fig-column` - Column for figure."}},
			{Key: "tbl-column", Doc: []string{"`tbl-column` - Column for table."}},
			{Key: "cap-location", Doc: []string{"`cap-location` - Caption position (top, bottom, margin)."}},
			{Key: "fig-cap-location", Doc: []string{"`fig-cap-location` - Caption for figure."}},
			{Key: "tbl-cap-location", Doc: []string{"`tbl-cap-location` - Caption for table."}},
		},
	},
	{
		Name:    "Cache",
		Options: []Option{
			{Key: "cache", Doc: []string{"`cache` - `knitr` only: Whether to cache a code chunk. When evaluating code chunks for the second time, the cached chunks are skipped (unless they have been modified), but the objects created in these chunks are loaded from previously saved databases (.rdb and .rdx files), and these files are saved when a chunk is evaluated for the first time, or when cached files are not found (e.g., you may have removed them by hand). Note that the filename consists of the chunk label with an MD5 digest of the R code and chunk options of the code chunk, which means any changes in the chunk will produce a different MD5 digest, and hence invalidate the cache"}},
			{Key: "cache-vars", Doc: []string{"`cache-vars` - `knitr` only: Variable names to be saved in the cache database. By default, all variables created in the current chunks are identified and saved, but you may want to manually specify the variables to be saved, because the automatic detection of variables may not be robust, or you may want to save only a subset of variables."}},
			{Key: "cache-globals", Doc: []string{"`cache-globals` - `knitr` only: Variables names that are not created from the current chunk."}},
			{Key: "cache-lazy", Doc: []string{"`cache-lazy` - `knitr` only: Whether to lazyLoad() or directly load() objects. For very large objects, lazyloading may not work, so cache-lazy: false may be desirable."}},
			{Key: "cache-rebuild", Doc: []string{"`cache-rebuild` - `knitr` only: Force rebuild of cache for chunk."}},
			{Key: "cache-comments", Doc: []string{"`cache-comments` - `knitr` only: Prevent comment changes from invalidating the cache for a chunk."}},
			{Key: "dependson", Doc: []string{"`dependson` - `knitr` only: Explicitly specify cache dependencies for this chunk (one or more chunk labels)."}},
			{Key: "autodep", Doc: []string{"`autodep` - `knitr` only: Detect cache dependencies automatically via usage of global variables."}},
		},
	},
	{
		Name:    "Include",
		Options: []Option{
			{Key: "child", Doc: []string{"`child` - `knitr` only:  One or more paths of child documents to be knitted and input into the main document."}},
			{Key: "file", Doc: []string{"`file` - `knitr` only:  File containing code to execute for this chunk."}},
			{Key: "code", Doc: []string{"`code` - `knitr` only:  String containing code to execute for this chunk."}},
			{Key: "purl", Doc: []string{"`purl` - `knitr` only:  Include chunk when extracting code with `knitr::purl()`."}},
		},
	},
}

// Lookup finds key in the catalog and returns its group.
func Lookup(key string) (Group, Option, bool) {
	for _, g := range Catalog {
		for _, o := range g.Options {
			if o.Key == key {
				return g, o, true
			}
		}
	}
	return Group{}, Option{}, false
}

// Sections returns the group names in catalog order.
func Sections() []string {
	names := make([]string, len(Catalog))
	for i, g := range Catalog {
		names[i] = g.Name
	}
	return names
}

// Section returns the group called name.
func Section(name string) (Group, bool) {
	for _, g := range Catalog {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}
