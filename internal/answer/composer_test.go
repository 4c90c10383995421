package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/povarna/knowledge-assistant/internal/knowledge"
	"github.com/povarna/knowledge-assistant/internal/llm"
	"github.com/povarna/knowledge-assistant/internal/llm/mocks"
	"github.com/povarna/knowledge-assistant/internal/policy"
	"go.uber.org/mock/gomock"
)

type fakeWiki struct {
	excerpts []knowledge.SourceExcerpt
}

func (f *fakeWiki) Search(_ context.Context, _ string) []knowledge.SourceExcerpt {
	return f.excerpts
}

type fakeRecords struct {
	records []knowledge.Record
}

func (f *fakeRecords) Search(_ context.Context, _ string) []knowledge.Record {
	return f.records
}

func testPolicy(t *testing.T) *policy.ContentPolicy {
	t.Helper()
	contentPolicy, err := policy.New(nil)
	if err != nil {
		t.Fatalf("failed to build policy: %v", err)
	}
	return contentPolicy
}

func newComposer(t *testing.T, ctrl *gomock.Controller, wiki *fakeWiki, records *fakeRecords) (*Composer, *mocks.MockClient) {
	t.Helper()
	mockClient := mocks.NewMockClient(ctrl)
	return NewComposer(wiki, records, mockClient, testPolicy(t), 500), mockClient
}

func TestCompose_WikiOnlyAttribution(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wiki := &fakeWiki{excerpts: []knowledge.SourceExcerpt{
		{Title: "VPN Setup", Excerpt: "Install the client.", URL: "/wiki/vpn"},
	}}
	composer, mockClient := newComposer(t, ctrl, wiki, &fakeRecords{})

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: "Install the VPN client and sign in with SSO."}, nil)

	composed, err := composer.Compose(context.Background(), "What is the VPN setup process?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(composed.Text, "Sources: Confluence") {
		t.Errorf("expected wiki-only attribution suffix, got %q", composed.Text)
	}
	if strings.Contains(composed.Text, "internal database") {
		t.Errorf("database attributed without contribution: %q", composed.Text)
	}
	if len(composed.Sources) != 1 || composed.Sources[0] != "Confluence" {
		t.Errorf("unexpected sources: %v", composed.Sources)
	}
}

func TestCompose_BothSourcesAttribution(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wiki := &fakeWiki{excerpts: []knowledge.SourceExcerpt{
		{Title: "Office Guide", Excerpt: "Desks are bookable.", URL: "/wiki/office"},
	}}
	records := &fakeRecords{records: []knowledge.Record{
		{"city": "Berlin", "desks": 40},
	}}
	composer, mockClient := newComposer(t, ctrl, wiki, records)

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: "Berlin has 40 bookable desks."}, nil)

	composed, err := composer.Compose(context.Background(), "How many desks in Berlin?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(composed.Text, "Sources: Confluence and internal database") {
		t.Errorf("expected both sources attributed, got %q", composed.Text)
	}
}

func TestCompose_NoSourcesNoSuffix(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	composer, mockClient := newComposer(t, ctrl, &fakeWiki{}, &fakeRecords{})

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: "I don't have information about that."}, nil)

	composed, err := composer.Compose(context.Background(), "Unknown topic?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(composed.Text, "Sources:") {
		t.Errorf("expected no attribution suffix, got %q", composed.Text)
	}
	if len(composed.Sources) != 0 {
		t.Errorf("unexpected sources: %v", composed.Sources)
	}
}

func TestCompose_PromptEmbedsBothResultLists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wiki := &fakeWiki{excerpts: []knowledge.SourceExcerpt{
		{Title: "Office Guide", Excerpt: "Desks are bookable.", URL: "/wiki/office"},
	}}
	records := &fakeRecords{records: []knowledge.Record{
		{"city": "Berlin", "desks": 40},
	}}
	composer, mockClient := newComposer(t, ctrl, wiki, records)

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, request llm.Request) (*llm.Response, error) {
			if !strings.Contains(request.Prompt, "Desks are bookable.") {
				t.Errorf("prompt missing wiki excerpt: %q", request.Prompt)
			}
			if !strings.Contains(request.Prompt, "city: Berlin, desks: 40") {
				t.Errorf("prompt missing database record: %q", request.Prompt)
			}
			if !strings.Contains(request.Prompt, "How many desks in Berlin?") {
				t.Errorf("prompt missing question: %q", request.Prompt)
			}
			if request.MaxTokens != 500 {
				t.Errorf("expected max tokens 500, got %d", request.MaxTokens)
			}
			return &llm.Response{Content: "Berlin has 40 desks."}, nil
		})

	if _, err := composer.Compose(context.Background(), "How many desks in Berlin?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompose_SynthesisFailureReturnsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	composer, mockClient := newComposer(t, ctrl, &fakeWiki{}, &fakeRecords{})

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("model unavailable"))

	if _, err := composer.Compose(context.Background(), "anything"); err == nil {
		t.Error("expected error when synthesis fails")
	}
}

func TestCompose_UnsafeAnswerReplacedWithRefusal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wiki := &fakeWiki{excerpts: []knowledge.SourceExcerpt{
		{Title: "Guide", Excerpt: "A clean excerpt.", URL: "/wiki/guide"},
	}}
	composer, mockClient := newComposer(t, ctrl, wiki, &fakeRecords{})

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: "The admin password is hunter2."}, nil)

	composed, err := composer.Compose(context.Background(), "What is the admin login?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if composed.Text != refusalText {
		t.Errorf("expected refusal text, got %q", composed.Text)
	}
	if len(composed.Sources) != 0 {
		t.Errorf("refusal must not attribute sources, got %v", composed.Sources)
	}
}
