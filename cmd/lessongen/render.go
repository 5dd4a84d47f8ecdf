package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/phrazzld/microlesson-api/internal/domain"
	"github.com/phrazzld/microlesson-api/internal/generation"
	"github.com/tidwall/gjson"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	lessonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4")).Width(80)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
)

func renderLesson(topic string, level domain.Level, s generation.Succeeded) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(topic))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render(fmt.Sprintf("%s · %d attempt(s)", level, s.Attempts)))
	b.WriteString("\n\n")
	b.WriteString(lessonStyle.Render(s.Document.Lesson))
	b.WriteString("\n")

	quiz := gjson.ParseBytes(s.Document.Quiz)
	if !quiz.IsArray() || len(quiz.Array()) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Quiz"))
	b.WriteString("\n")
	for i, item := range quiz.Array() {
		b.WriteString(questionStyle.Render(fmt.Sprintf("%d. %s", i+1, item.Get("question").String())))
		b.WriteString("\n")
		for j, opt := range item.Get("options").Array() {
			fmt.Fprintf(&b, "   %c) %s\n", 'a'+rune(j%26), opt.String())
		}
		if answer := item.Get("answer"); answer.Exists() {
			b.WriteString(answerStyle.Render("   Answer: " + answer.String()))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderFailure(f generation.Failed) string {
	return errorStyle.Render("Error:") + " " + f.Message
}
