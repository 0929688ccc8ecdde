package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds:
//
//	.
//	├── a.go (10)
//	├── b.go (20)
//	└── sub
//	    └── c.go (5)
func sample() *Node {
	root := NewFolder("repo", RootPath, 0)
	sub := NewFolder("sub", "sub", 1)
	sub.Children = []*Node{NewFile("c.go", "sub/c.go", "Go", 5, 2)}
	root.Children = []*Node{
		NewFile("a.go", "a.go", "Go", 10, 1),
		NewFile("b.go", "b.go", "Go", 20, 1),
		sub,
	}
	return root
}

func TestAggregate_SumsDescendants(t *testing.T) {
	root := sample()
	Aggregate(root)

	assert.Equal(t, 35, root.LineCount)
	assert.Equal(t, 5, Find(root, "sub").LineCount)

	total := 0
	for _, f := range Files(root) {
		total += f.LineCount
	}
	assert.Equal(t, total, root.LineCount)
}

func TestAggregate_Idempotent(t *testing.T) {
	root := sample()
	Aggregate(root)
	first := root.LineCount
	sub := Find(root, "sub").LineCount

	Aggregate(root)
	assert.Equal(t, first, root.LineCount)
	assert.Equal(t, sub, Find(root, "sub").LineCount)
}

func TestAggregate_DominantLanguage(t *testing.T) {
	tests := []struct {
		name     string
		children []*Node
		want     string
	}{
		{
			name: "largest child wins",
			children: []*Node{
				NewFile("a.ps1", "a.ps1", "PowerShell", 3, 1),
				NewFile("b.cs", "b.cs", "CSharp", 30, 1),
			},
			want: "CSharp",
		},
		{
			name: "tie keeps first child",
			children: []*Node{
				NewFile("a.ps1", "a.ps1", "PowerShell", 7, 1),
				NewFile("b.cs", "b.cs", "CSharp", 7, 1),
			},
			want: "PowerShell",
		},
		{
			name: "largest child wins without a language",
			children: []*Node{
				NewFile("notes.txt", "notes.txt", "", 40, 1),
				NewFile("b.cs", "b.cs", "CSharp", 9, 1),
			},
			want: "",
		},
		{
			name:     "no children",
			children: nil,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewFolder("repo", RootPath, 0)
			root.Children = tt.children
			Aggregate(root)
			if root.Language != tt.want {
				t.Errorf("Language = %q, want %q", root.Language, tt.want)
			}
		})
	}
}

func TestAggregate_FolderLanguageFromNestedFolder(t *testing.T) {
	root := NewFolder("repo", RootPath, 0)
	big := NewFolder("big", "big", 1)
	big.Children = []*Node{NewFile("x.py", "big/x.py", "Python", 100, 2)}
	root.Children = []*Node{NewFile("y.go", "y.go", "Go", 50, 1), big}

	Aggregate(root)
	assert.Equal(t, "Python", root.Language)
}

func TestPrune_DropsEmptyFolders(t *testing.T) {
	root := NewFolder("repo", RootPath, 0)
	empty := NewFolder("empty", "empty", 1)
	empty.Children = []*Node{NewFolder("deeper", "empty/deeper", 2)}
	root.Children = []*Node{empty, NewFile("main.go", "main.go", "Go", 3, 1)}

	require.True(t, Prune(root))
	require.Len(t, root.Children, 1)
	assert.Equal(t, "main.go", root.Children[0].Path)
	assert.Nil(t, Find(root, "empty"))
}

func TestPrune_AllEmpty(t *testing.T) {
	root := NewFolder("repo", RootPath, 0)
	root.Children = []*Node{NewFolder("a", "a", 1)}
	assert.False(t, Prune(root))
}

func TestFind(t *testing.T) {
	root := sample()
	tests := []struct {
		path string
		want string
	}{
		{".", "repo"},
		{"", "repo"},
		{"a.go", "a.go"},
		{"sub", "sub"},
		{"sub/c.go", "c.go"},
		{"/sub/c.go", "c.go"},
		{"missing.go", ""},
	}
	for _, tt := range tests {
		got := Find(root, tt.path)
		if tt.want == "" {
			assert.Nil(t, got, tt.path)
			continue
		}
		require.NotNil(t, got, tt.path)
		assert.Equal(t, tt.want, got.Name)
	}
}

func TestChildPath(t *testing.T) {
	assert.Equal(t, "a.go", ChildPath(RootPath, "a.go"))
	assert.Equal(t, "a.go", ChildPath("", "a.go"))
	assert.Equal(t, "src/a.go", ChildPath("src", "a.go"))
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	assert.True(t, r.Contains(10, 10))
	assert.True(t, r.Contains(14.9, 14.9))
	assert.False(t, r.Contains(15, 12))
	assert.False(t, r.Contains(9.99, 12))
	assert.Equal(t, 25.0, r.Area())
}

func TestLanguagesAndCount(t *testing.T) {
	root := sample()
	root.Children = append(root.Children, NewFile("d.py", "d.py", "Python", 1, 1))
	assert.Equal(t, []string{"Go", "Python"}, Languages(root))
	assert.Equal(t, 6, Count(root))
}
