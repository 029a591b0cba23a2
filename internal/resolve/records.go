package resolve

import (
	"github.com/giftology/radar/internal/xmltree"
	"github.com/giftology/radar/pkg/schema"
)

func toTask(n any) schema.Task {
	return schema.Task{
		Name:    text(n, "Name", "TaskName"),
		Serial:  integer(n, "Serial", "TaskSerial"),
		Contact: text(n, "Contact", "Name"),
		Date:    text(n, "Date"),
		Status:  integer(n, "Status"),
	}
}

// Tasks resolves a GetTaskList payload.
func Tasks(tree map[string]any) []schema.Task {
	out, _ := FirstMatch(tree, pathExtractors("Task", toTask)...)
	return out
}

// Task resolves a GetTask payload. The record may sit under Task at the root,
// under Selections, or be the payload itself.
func Task(tree map[string]any) schema.Task {
	if m := objectAt(tree, "Task"); m != nil {
		return toTask(m)
	}
	return toTask(tree)
}

func toDOVDate(n any) schema.DOVDate {
	return schema.DOVDate{
		Name:          text(n, "Name"),
		ContactSerial: text(n, "ContactSerial"),
		Date:          text(n, "Date"),
	}
}

// DOVDates resolves a GetDOVDateList payload.
func DOVDates(tree map[string]any) schema.DOVDateList {
	list := func(key string) []schema.DOVDate {
		out, _ := FirstMatch(tree, pathExtractors(key, toDOVDate)...)
		return out
	}
	return schema.DOVDateList{
		Harmless:   list("Harmless"),
		Greenlight: list("Greenlight"),
		Clarity:    list("Clarity"),
	}
}

// Contact resolves a GetContact payload.
func Contact(tree map[string]any) schema.Contact {
	if m := objectAt(tree, "Contact", "contact"); m != nil {
		return toContact(m)
	}
	return toContact(tree)
}

// UserInfo resolves a GetUserInfo payload. The backend has shipped the
// contact node misspelled as Conctact, so both are accepted.
func UserInfo(tree map[string]any) schema.UserInfo {
	c := objectAt(tree, "Contact", "Conctact")
	if c == nil {
		return schema.UserInfo{}
	}
	return schema.UserInfo{
		Name:       text(c, "Name"),
		Email:      text(c, "Email"),
		Company:    text(c, "Company"),
		Serial:     integer(c, "Serial"),
		Subscriber: integer(c, "Subscriber"),
	}
}

// Help resolves a GetHelp payload.
func Help(tree map[string]any, id string) schema.Help {
	node := objectAt(tree, "Help")
	if node == nil {
		node = tree
	}
	h := schema.Help{
		ID:     id,
		Title:  text(node, "Title", "Name", "Subject"),
		Text:   text(node, "Text", "Body", "Content", "Description"),
		Fields: map[string]string{},
	}
	for _, k := range xmltree.Keys(node) {
		switch k {
		case "Result", "ErrorNumber", "Message", "Selections":
			continue
		}
		if s := xmltree.TextOf(node[k]); s != "" {
			h.Fields[k] = s
		}
	}
	return h
}

// AuthCode extracts the authorization code the verification endpoints return
// in an Auth tag.
func AuthCode(tree map[string]any) string {
	keys := []string{"Auth", "auth", "AC", "ac"}
	if s := text(tree, keys...); s != "" {
		return s
	}
	return text(xmltree.SelectionsOf(tree), keys...)
}
