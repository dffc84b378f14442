package models

// BlockType is the type tag of a content block
type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockQuote            BlockType = "quote"
	BlockCallout          BlockType = "callout"
	BlockToDo             BlockType = "to_do"
	BlockToggle           BlockType = "toggle"
	BlockCode             BlockType = "code"
	BlockEquation         BlockType = "equation"
	BlockDivider          BlockType = "divider"
	BlockImage            BlockType = "image"
	BlockVideo            BlockType = "video"
	BlockFile             BlockType = "file"
	BlockPDF              BlockType = "pdf"
	BlockAudio            BlockType = "audio"
)

// IsMedia reports whether the block references binary content
func (t BlockType) IsMedia() bool {
	switch t {
	case BlockImage, BlockVideo, BlockFile, BlockPDF, BlockAudio:
		return true
	}
	return false
}

// Block is a node of a page's content tree. Children are only populated
// after the tree has been fetched and belong to this block alone.
type Block struct {
	ID          string
	Type        BlockType
	HasChildren bool

	RichText   []RichText
	Caption    []RichText
	Checked    bool
	Language   string
	Icon       string
	Expression string

	Children []*Block
}

// BlockBatch is one page of a block-children listing
type BlockBatch struct {
	Blocks     []*Block
	NextCursor string
	HasMore    bool
}
