package notion

import (
	"github.com/jomei/notionapi"
)

type notionClientAdapter struct {
	client *notionapi.Client
}

func newNotionClientAdapter(client *notionapi.Client) NotionClient {
	return &notionClientAdapter{client: client}
}

func (a *notionClientAdapter) Database() DatabaseService {
	return a.client.Database
}

func (a *notionClientAdapter) Block() BlockService {
	return a.client.Block
}
