package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/faqbot/faqbot/internal/faq"
)

// Step timeouts mirror the legacy bot: quick steps get two minutes, the
// free-form description gets five, and the delete confirmation is short
// on purpose.
const (
	tagsTimeout        = 120 * time.Second
	titleTimeout       = 120 * time.Second
	descriptionTimeout = 300 * time.Second
	fieldChoiceTimeout = 120 * time.Second
	confirmTimeout     = 25 * time.Second
)

// Sender delivers one outbound text message to the chat a flow runs in.
type Sender func(ctx context.Context, text string) error

// Flows runs the interactive add/edit/delete builders. Every flow holds
// the key's session slot for its whole lifetime, sends its own progress
// and failure messages, and performs at most one Manager call at the end.
// Returned errors are I/O failures only; timeouts, cancellations, and
// conflicts are reported to the user and return nil.
type Flows struct {
	broker  *Broker
	store   *faq.Store
	manager *faq.Manager
}

// NewFlows creates the builder flows over the given broker and FAQ
// collaborators.
func NewFlows(broker *Broker, store *faq.Store, manager *faq.Manager) *Flows {
	return &Flows{broker: broker, store: store, manager: manager}
}

// Add runs the interactive creation flow: tags, then title, then
// description, then a single Manager.Add.
func (f *Flows) Add(ctx context.Context, key Key, send Sender) error {
	if err := f.broker.Acquire(key); err != nil {
		return send(ctx, "You already have a pending FAQ session in this chat. Finish or cancel it first.")
	}
	defer f.broker.Release(key)

	w := f.broker.Register(key)
	if err := send(ctx, "**Please enter FAQ tags**\nExample: tag 1, tag 2, some other tag - or type \"x\" to cancel"); err != nil {
		return err
	}
	reply := w.Wait(ctx, tagsTimeout)
	switch reply.Kind {
	case Cancelled:
		return nil
	case TimedOut:
		return send(ctx, "**Creation of the new FAQ timed out**\nRe-run the command to try again.")
	}

	tags := SplitTags(reply.Text)
	if len(tags) == 0 {
		return send(ctx, "**Invalid FAQ tags**\nSpecify at least one tag, comma separated.")
	}

	prompt := fmt.Sprintf("**Creating a new FAQ with the tags [%s]**\nPlease enter the FAQ title, or type \"x\" to cancel", strings.Join(tags, ", "))
	w = f.broker.Register(key)
	if err := send(ctx, prompt); err != nil {
		return err
	}
	reply = w.Wait(ctx, titleTimeout)
	switch reply.Kind {
	case Cancelled:
		return nil
	case TimedOut:
		return send(ctx, "**Creation of the new FAQ timed out**\nRe-run the command to try again.")
	}
	title := strings.TrimSpace(reply.Text)

	prompt = fmt.Sprintf("**Set the FAQ's title to %s**\nPlease enter the FAQ description, including any relevant links, or type \"x\" to cancel", title)
	w = f.broker.Register(key)
	if err := send(ctx, prompt); err != nil {
		return err
	}
	reply = w.Wait(ctx, descriptionTimeout)
	switch reply.Kind {
	case Cancelled:
		return nil
	case TimedOut:
		return send(ctx, "**Setting the FAQ description timed out**\nRe-run the command to try again.")
	}
	description := strings.TrimSpace(reply.Text)

	_, outcome, err := f.manager.Add(tags, title, description, "")
	if err != nil {
		return err
	}
	if outcome == faq.OutcomeTagConflict {
		return send(ctx, "**Invalid FAQ tags**\nA tag you listed is reserved or already in use by another FAQ. Nothing was created.")
	}
	return send(ctx, "**Successfully created a new FAQ**")
}

// editableFields maps a field-choice reply to the edit it performs.
var editableFields = map[string]string{
	"tags":        "tags",
	"title":       "title",
	"description": "description",
	"image":       "image",
}

// Edit runs the interactive edit flow for the entry owning tag: choose a
// field, supply its new value, then a single Manager.Edit.
func (f *Flows) Edit(ctx context.Context, key Key, tag string, send Sender) error {
	if err := f.broker.Acquire(key); err != nil {
		return send(ctx, "You already have a pending FAQ session in this chat. Finish or cancel it first.")
	}
	defer f.broker.Release(key)

	entry := f.store.FindByTag(faq.NormalizeTag(tag))
	if entry == nil {
		return send(ctx, fmt.Sprintf("**Invalid FAQ tag**\nThere is no FAQ with the tag %q.", faq.NormalizeTag(tag)))
	}

	w := f.broker.Register(key)
	if err := send(ctx, fmt.Sprintf("**Editing FAQ %q**\nWhich field do you want to change? (tags, title, description, image) - or type \"x\" to cancel", entry.Title)); err != nil {
		return err
	}
	reply := w.Wait(ctx, fieldChoiceTimeout)
	switch reply.Kind {
	case Cancelled:
		return nil
	case TimedOut:
		return send(ctx, "**Editing the FAQ timed out**\nRe-run the command to try again.")
	}

	field, ok := editableFields[strings.ToLower(strings.TrimSpace(reply.Text))]
	if !ok {
		return send(ctx, "**Unknown field**\nChoose one of: tags, title, description, image.")
	}

	valueTimeout := titleTimeout
	if field == "description" {
		valueTimeout = descriptionTimeout
	}
	w = f.broker.Register(key)
	if err := send(ctx, fmt.Sprintf("**Please enter the new %s**, or type \"x\" to cancel", field)); err != nil {
		return err
	}
	reply = w.Wait(ctx, valueTimeout)
	switch reply.Kind {
	case Cancelled:
		return nil
	case TimedOut:
		return send(ctx, "**Editing the FAQ timed out**\nRe-run the command to try again.")
	}
	value := strings.TrimSpace(reply.Text)

	newTags := entry.Tags
	title := entry.Title
	description := entry.Description
	image := entry.Image
	switch field {
	case "tags":
		newTags = SplitTags(value)
		if len(newTags) == 0 {
			return send(ctx, "**Invalid FAQ tags**\nSpecify at least one tag, comma separated.")
		}
	case "title":
		title = value
	case "description":
		description = value
	case "image":
		image = value
	}

	_, outcome, err := f.manager.Edit(entry.Tags, newTags, title, description, image)
	if err != nil {
		return err
	}
	switch outcome {
	case faq.OutcomeNotFound:
		return send(ctx, "**The FAQ disappeared while you were editing it**\nRe-run the command to try again.")
	case faq.OutcomeTagConflict:
		return send(ctx, "**Invalid FAQ tags**\nA tag you listed is reserved or already in use by another FAQ. Nothing was changed.")
	}
	return send(ctx, fmt.Sprintf("**Updated the FAQ's %s**", field))
}

// Delete runs the confirmation flow for removing the entry owning tag.
// Only the literal reply "yes" deletes; anything else is a cancellation.
func (f *Flows) Delete(ctx context.Context, key Key, tag string, send Sender) error {
	if err := f.broker.Acquire(key); err != nil {
		return send(ctx, "You already have a pending FAQ session in this chat. Finish or cancel it first.")
	}
	defer f.broker.Release(key)

	norm := faq.NormalizeTag(tag)
	entry := f.store.FindByTag(norm)
	if entry == nil {
		return send(ctx, fmt.Sprintf("**Invalid FAQ tag**\nThere is no FAQ with the tag %q.", norm))
	}

	prompt := fmt.Sprintf("**Found FAQ %q**\nAre you sure you wish to delete it? Deleting a FAQ is permanent.\nType yes to continue, or anything else to cancel", entry.Title)
	w := f.broker.Register(key)
	if err := send(ctx, prompt); err != nil {
		return err
	}

	reply := w.Wait(ctx, confirmTimeout)
	if reply.Kind == TimedOut {
		return send(ctx, "**FAQ deletion timed out**\nRe-run the command to try again.")
	}
	if reply.Kind != Replied || !strings.EqualFold(strings.TrimSpace(reply.Text), "yes") {
		return send(ctx, fmt.Sprintf("**FAQ deletion cancelled**\nThe FAQ %q has not been deleted.", norm))
	}

	_, outcome, err := f.manager.Remove(norm)
	if err != nil {
		return err
	}
	if outcome == faq.OutcomeNotFound {
		return send(ctx, "**The FAQ disappeared before it could be deleted**")
	}
	return send(ctx, "**The FAQ has been deleted**")
}

// SplitTags splits a comma-separated tag reply into normalized tags,
// dropping empties and duplicates.
func SplitTags(s string) []string {
	return faq.NormalizeTags(strings.Split(s, ","))
}
