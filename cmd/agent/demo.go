package main

import (
	"github.com/petasbytes/fsagent/internal/fsops"
)

const (
	demoInputFile = "sample_input.txt"
	demoTask      = "Read 'sample_input.txt' and write a concise 2-sentence summary to 'summary_file.txt'. Then confirm what you did."
)

// demoEssay is the demo input file, unchanged.
const demoEssay = `Here’s a short technical essay, concise but with enough depth to show structure and clarity:

---

## The Role of Embeddings in Modern AI Systems

At the core of many AI applications lies the concept of **embeddings**—mathematical representations of data in a high-dimensional vector space. Embeddings are powerful because they allow raw, unstructured inputs such as text, images, or even audio to be transformed into numerical formats that capture semantic meaning.

For natural language, embeddings map words or sentences into vectors such that similar concepts are placed closer together. For example, the vectors for *“king”* and *“queen”* will be nearer than those for *“king”* and *“banana.”* This property enables efficient search, clustering, recommendation, and reasoning tasks.

Modern models like OpenAI’s GPT or Google’s Gemini rely heavily on embeddings not only for understanding user queries but also for retrieving relevant knowledge from external sources. A widely used technique is **retrieval-augmented generation (RAG)**, where embeddings are used to find semantically related documents that the model can consult when forming its answer.

Beyond text, multimodal embeddings unify different types of data. An image of a dog, the spoken word “dog,” and the text “dog” can all be mapped into a shared space, enabling systems like CLIP or cross-modal search engines.

The importance of embeddings lies in their dual role: they are both a **bridge between raw data and machine reasoning** and a **foundation for scalable, semantic applications.** As embedding models become more fine-grained and domain-specific, they will continue to expand the frontiers of AI-driven search, personalization, and knowledge navigation.

---

Do you want me to make this essay more **academic (with citations)**, or more **casual and blog-style**?
`

// seedDemo writes the demo input file into the sandbox and returns the demo task.
func seedDemo(fs *fsops.FS) (string, error) {
	if _, err := fs.WriteFile(demoInputFile, demoEssay); err != nil {
		return "", err
	}
	return demoTask, nil
}
