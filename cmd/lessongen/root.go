package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// errReported marks failures that were already printed to the user.
var errReported = errors.New("failure already reported")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lessongen",
		Short: "Generate a micro-lesson with a quiz from the terminal",
		Long: `lessongen asks the configured LLM for a short lesson and a quiz on a topic.

The Groq API key is read from --api-key, GROQ_API_KEY or
MICROLESSON_LLM_GROQ_API_KEY. A .env file in the working directory is
loaded first when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd())
	return root
}
