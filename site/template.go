package site

// pageTemplate renders the whole game as one self-contained document.
//
// Puzzles appear in store order: the oldest puzzle first, numbered from 1.
// Titles and URLs are only present in obfuscated form (data-title,
// data-link) and are decoded by the script below when the player guesses
// correctly or gives up.
const pageTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
` + stylesheet + `</style>
</head>
<body>
<h1 class="banner">{{.Title}}</h1>
<p class="intro">Each box is the table of contents of a Wikipedia article. Can you name the article?</p>
<div class="container">
{{- range .Puzzles}}
<div class="puzzle" id="puzzle-{{.ID}}" data-id="{{.ID}}" data-title="{{.EncodedTitle}}" data-link="{{.EncodedURL}}" title="#{{.Number}}{{.Byline}}">
 <div class="header"><h2>Contents</h2> <span class="number">#{{.Number}}{{.Byline}}</span></div>
 <ul>
{{- range .Entries}}
<li><span class="tocnumber depth-{{.Depth}}">{{.Number}}</span> <span class="toctext">{{.Text}}</span></li>
{{- end}}
 </ul>
 <form class="guess">
  <input type="text" name="guess" placeholder="Article title" autocomplete="off">
  <button type="submit">Guess</button>
  <button type="button" class="reveal">Reveal</button>
 </form>
 <div class="answer" hidden></div>
</div>
{{- else}}
<p class="empty">No puzzles yet.</p>
{{- end}}
</div>
<div class="puzzle footer">
 <a href="{{.RepoURL}}">Fork me on GitHub</a>
</div>
<script>
` + script + `</script>
</body>
</html>
`

const stylesheet = `body {
  font-family: sans-serif;
}
.banner, .intro {
  text-align: center;
}
.container {
  display: flex;
  flex-wrap: wrap;
}
.puzzle {
  background-color: #f8f9fa;
  border: 1px solid #a2a9b1;
  padding: 12px;
  display: inline-table;
  line-height: 1.6;
  margin: 1em;
}
.puzzle.solved {
  border-color: #14866d;
}
.header {
  text-align: center;
}
.number {
  color: #54595d;
  font-size: 90%;
}
h2 {
  display: inline;
  border: 0;
  padding: 0;
  font-size: 100%;
  font-weight: bold;
}
ul {
  list-style-image: none;
  list-style-type: none;
  margin: 0.3em 0;
  padding: 0;
}
li {
  margin-bottom: 0.1em;
}
.toctext, a, a:visited {
  color: #0645ad;
  text-decoration: none;
}
a:hover {
  text-decoration: underline;
}
.depth-0 { margin-left: 0em; }
.depth-1 { margin-left: 2em; }
.depth-2 { margin-left: 4em; }
.depth-3 { margin-left: 6em; }
.depth-4 { margin-left: 8em; }
.depth-5 { margin-left: 10em; }
.guess input {
  width: 12em;
}
.answer {
  font-weight: bold;
  text-align: center;
}
.wrong {
  color: #d33;
}
`

// script decodes a hidden field the same way puzzle.Decode does: base64,
// first byte is the salt, the rest is XORed with it.
const script = `(function () {
  "use strict";

  function decode(encoded) {
    var raw = atob(encoded);
    var salt = raw.charCodeAt(0);
    var bytes = new Uint8Array(raw.length - 1);
    for (var i = 1; i < raw.length; i++) {
      bytes[i - 1] = raw.charCodeAt(i) ^ salt;
    }
    return new TextDecoder("utf-8").decode(bytes);
  }

  function normalize(title) {
    return title
      .replace(/\s*\([^)]*\)\s*$/, "")
      .toLowerCase()
      .replace(/[^\p{L}\p{N}]+/gu, "");
  }

  function storageKey(el) {
    return "wikigame:" + el.dataset.id;
  }

  function show(el) {
    var title = decode(el.dataset.title);
    var link = document.createElement("a");
    link.href = decode(el.dataset.link);
    link.textContent = title;
    var answer = el.querySelector(".answer");
    answer.textContent = "";
    answer.appendChild(link);
    answer.hidden = false;
    el.querySelector(".guess").hidden = true;
    el.classList.add("solved");
  }

  function solve(el) {
    try {
      localStorage.setItem(storageKey(el), "solved");
    } catch (e) {}
    show(el);
  }

  document.querySelectorAll(".puzzle[data-id]").forEach(function (el) {
    var form = el.querySelector(".guess");
    var input = form.querySelector("input");

    form.addEventListener("submit", function (event) {
      event.preventDefault();
      if (normalize(input.value) !== "" && normalize(input.value) === normalize(decode(el.dataset.title))) {
        solve(el);
      } else {
        input.classList.add("wrong");
      }
    });

    input.addEventListener("input", function () {
      input.classList.remove("wrong");
    });

    form.querySelector(".reveal").addEventListener("click", function () {
      show(el);
    });

    try {
      if (localStorage.getItem(storageKey(el)) === "solved") {
        show(el);
      }
    } catch (e) {}
  });
})();
`
