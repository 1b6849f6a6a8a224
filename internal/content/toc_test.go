package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableOfContents(t *testing.T) {
	body := "# Getting Started\n" +
		"Intro text\n" +
		"## Install the CLI!\n" +
		"```bash\n" +
		"# not a heading\n" +
		"```\n" +
		"###   Configure   your   app  \n" +
		"####### too deep\n" +
		"#NoSpace\n"

	headings := TableOfContents(body)
	require.Len(t, headings, 3)

	assert.Equal(t, Heading{Level: 1, Text: "Getting Started", ID: "getting-started"}, headings[0])
	assert.Equal(t, Heading{Level: 2, Text: "Install the CLI!", ID: "install-the-cli"}, headings[1])
	assert.Equal(t, Heading{Level: 3, Text: "Configure   your   app", ID: "configure-your-app"}, headings[2])
}

func TestTableOfContentsEmpty(t *testing.T) {
	assert.Empty(t, TableOfContents(""))
	assert.NotNil(t, TableOfContents(""))
}

func TestHeadingID(t *testing.T) {
	assert.Equal(t, "whats-new-in-v2", HeadingID("What's New in v2"))
	assert.Equal(t, "hello-world", HeadingID("Hello World"))
	assert.Equal(t, "snake_case-stays", HeadingID("snake_case stays"))
}
