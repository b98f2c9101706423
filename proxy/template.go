package proxy

import (
	"fmt"
	"strings"
)

// embedStyle hides scrollbars and constrains the embedded post so it sits
// cleanly inside the dashboard iframe.
const embedStyle = `<style>
  html, body { margin:0; padding:0; height:100%; overflow:hidden; background:transparent; }
  * { scrollbar-width: none; } *::-webkit-scrollbar { display: none; }
  mark { background: #ffea94; color: inherit; padding: 0 .1em; border-radius: .15em; }
</style>`

// highlightScript wraps matching text nodes in <mark>. The placeholder is
// replaced with a JSON string (or null) at serve time.
const highlightScript = `<script>
  (function(){
    function escapeRegExp(s){return s.replace(/[.*+?^${}()|[\]\\]/g,'\\$&');}
    function highlight(term){
      if(!term || !term.trim()) return;
      var rx = new RegExp(escapeRegExp(term), 'gi');
      var walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT, null);
      var nodes=[], n;
      while(n = walker.nextNode()) {
        var p = n.parentNode;
        if(!p) continue;
        var tag = p.nodeName;
        if(tag==='SCRIPT'||tag==='STYLE'||tag==='NOSCRIPT'||tag==='IFRAME') continue;
        if(n.nodeValue && rx.test(n.nodeValue)) nodes.push(n);
      }
      nodes.forEach(function(text){
        var span = document.createElement('span');
        span.innerHTML = text.nodeValue.replace(rx, function(m){ return '<mark>'+m+'</mark>'; });
        text.parentNode.replaceChild(span, text);
      });
    }
    document.addEventListener('DOMContentLoaded', function(){
      var term = __HL_PLACEHOLDER__;
      if(!term){
        try { term = new URLSearchParams(location.search).get('hl'); } catch(_){ term = null; }
      }
      if(term) highlight(term);
    });
  })();
</script>`

// buildTemplate turns the upstream post page into a cacheable embed
// template: root-relative asset URLs become absolute, a base tag fixes the
// rest, and the highlight machinery is injected with its placeholder token.
func (p *Proxy) buildTemplate(upstream string, postID string) string {
	// Root-relative references break inside our origin; point them home.
	rewritten := strings.ReplaceAll(upstream, `href="/`, fmt.Sprintf(`href="%s/`, p.baseURL))
	rewritten = strings.ReplaceAll(rewritten, `src="/`, fmt.Sprintf(`src="%s/`, p.baseURL))

	injection := fmt.Sprintf(`<base href="%s/">%s%s`, p.baseURL, embedStyle, highlightScript)

	// Inject right after the opening head tag; pages without one get a
	// synthetic head block prepended.
	if idx := strings.Index(strings.ToLower(rewritten), "<head>"); idx >= 0 {
		insertAt := idx + len("<head>")
		return rewritten[:insertAt] + injection + rewritten[insertAt:]
	}
	return "<head>" + injection + "</head>" + rewritten
}
