package entity

// StructuredMessage is a paper plus its relation, addressed to one channel.
// It is built per paper and consumed immediately by a notifier.
type StructuredMessage struct {
	Title    string
	Link     string
	Abstract string
	Authors  []string
	Relation Relation
	Channel  string
}

// NewStructuredMessage assembles the message for paper addressed to channel.
func NewStructuredMessage(paper Paper, relation Relation, channel string) StructuredMessage {
	return StructuredMessage{
		Title:    paper.Title,
		Link:     paper.Link,
		Abstract: paper.Abstract,
		Authors:  paper.Authors,
		Relation: relation,
		Channel:  channel,
	}
}
