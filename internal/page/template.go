package page

// pageTemplate is the host document. The scroll container holds a sticky
// stage and a spacer sized from the mount's scroll height.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    html, body { margin: 0; height: 100%; background: #0f1115; color: #e6e6e6; }
    #container { height: 100vh; overflow-y: auto; position: relative; }
    #stage { position: sticky; top: 0; height: 100vh; width: 100%; }
    #stage svg { width: 100%; height: 100%; display: block; }
    #spacer { position: absolute; top: 0; left: 0; width: 1px; pointer-events: none; }
    .captions { position: absolute; top: 0; right: 2rem; width: 22rem; }
    .caption { position: absolute; width: 100%; background: rgba(15,17,21,0.85);
      border-left: 3px solid #ffd166; padding: 0.5rem 1rem; font: 14px/1.5 ui-sans-serif, system-ui, sans-serif; }
    .caption pre { overflow-x: auto; padding: 0.5rem; border-radius: 4px; }
    form.tokens { position: fixed; left: 1rem; bottom: 1rem; z-index: 2; }
    form.tokens input { width: 18rem; }
  </style>
</head>
<body>
  <div id="container" data-heads="{{.Heads}}">
    <div id="stage"><svg xmlns="http://www.w3.org/2000/svg"></svg></div>
    <div id="spacer"></div>
    <div class="captions" id="captions">
      {{range .Sections}}<section class="caption" id="caption-{{.ID}}" data-stage="{{.ID}}" aria-label="{{.Title}}" style="top: {{pct .Top}}">
        {{.HTML}}
      </section>
      {{end}}
    </div>
  </div>
  <form class="tokens" id="tokens-form">
    <input type="text" id="tokens-input" value="{{.Tokens}}" aria-label="Tokens">
    <button type="submit">Update</button>
  </form>
  <script>{{.Script}}</script>
</body>
</html>
`

// clientScript speaks the /ws session protocol: it applies patches, injects the
// scoped style and attaches the listeners the server asks for.
const clientScript = `
(function () {
  var container = document.getElementById('container');
  var svg = container.querySelector('svg');
  var spacer = document.getElementById('spacer');
  var captions = document.getElementById('captions');
  var NS = 'http://www.w3.org/2000/svg';
  var nodes = new Map();
  var attached = new Map();
  var style = null;
  var ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');

  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }

  function size() {
    return {
      width: svg.clientWidth, height: svg.clientHeight,
      viewport_width: window.innerWidth, viewport_height: window.innerHeight
    };
  }

  function apply(patches) {
    (patches || []).forEach(function (p) {
      var el = nodes.get(p.id);
      switch (p.op) {
      case 'create':
        el = document.createElementNS(NS, p.kind);
        el.setAttribute('data-id', p.id);
        (p.parent ? nodes.get(p.parent) : svg).appendChild(el);
        nodes.set(p.id, el);
        break;
      case 'delete':
        if (el) { el.remove(); nodes.delete(p.id); }
        break;
      case 'set':
        if (!el) break;
        if (p.key === '#text') el.textContent = p.value;
        else el.setAttribute(p.key, p.value);
        break;
      case 'remove':
        if (!el) break;
        if (p.key === '#text') el.textContent = '';
        else el.removeAttribute(p.key);
        break;
      }
    });
  }

  function target(l) {
    return l.target === 'container' ? container : nodes.get(l.target);
  }

  function onPointer(kind, el) {
    send({ type: 'pointer', kind: kind, head: +el.getAttribute('data-head'), token: +el.getAttribute('data-token') });
  }

  function onScroll() {
    send({ type: 'scroll', scroll_top: container.scrollTop, total_scroll_height: container.scrollHeight - container.clientHeight });
  }

  function detach() {
    attached.forEach(function (h, id) { h.el.removeEventListener(h.event, h.fn); });
    attached.clear();
  }

  function listen(ls) {
    if (!ls) return;
    detach();
    ls.forEach(function (l) {
      var el = target(l);
      if (!el) return;
      var fn;
      if (l.event === 'scroll') fn = onScroll;
      else if (l.event === 'pointerenter') fn = function () { onPointer('enter', el); };
      else if (l.event === 'pointerleave') fn = function () { onPointer('leave', el); };
      else if (l.event === 'click') fn = function () { onPointer('click', el); };
      else return;
      el.addEventListener(l.event, fn, l.event === 'scroll' ? { passive: true } : false);
      attached.set(l.id, { el: el, event: l.event, fn: fn });
    });
    sendRects();
  }

  function sendRects() {
    var rects = {};
    nodes.forEach(function (el, id) {
      if (!el.hasAttribute('data-token') || el.tagName !== 'text' || typeof el.getBBox !== 'function') return;
      var b = el.getBBox();
      rects[id] = { x: b.x, y: b.y, width: b.width, height: b.height };
    });
    send({ type: 'rects', rects: rects });
  }

  function layout(scrollHeight) {
    if (!scrollHeight) return;
    var h = scrollHeight + 'px';
    spacer.style.height = h;
    captions.style.height = h;
  }

  ws.onopen = function () {
    var m = size();
    m.type = 'mount';
    m.scroll_anchor = !!container;
    send(m);
  };

  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    switch (msg.type) {
    case 'mounted':
      style = document.createElement('style');
      style.setAttribute('data-mount-style', msg.mount_id);
      style.textContent = msg.style;
      document.head.appendChild(style);
      apply(msg.patches);
      layout(msg.scroll_height);
      listen(msg.listeners);
      break;
    case 'patch':
      apply(msg.patches);
      listen(msg.listeners);
      break;
    case 'unmounted':
      apply(msg.patches);
      detach();
      if (msg.remove_style && style) { style.remove(); style = null; }
      break;
    case 'error':
      console.warn('attnviz:', msg.message);
      break;
    }
  };

  var resizeTimer = 0;
  window.addEventListener('resize', function () {
    clearTimeout(resizeTimer);
    resizeTimer = setTimeout(function () {
      var m = size();
      m.type = 'resize';
      send(m);
      sendRects();
    }, 100);
  });

  document.getElementById('tokens-form').addEventListener('submit', function (e) {
    e.preventDefault();
    var words = document.getElementById('tokens-input').value.split(/\s+/).filter(Boolean);
    send({ type: 'tokens', tokens: words });
  });

  window.addEventListener('beforeunload', function () { send({ type: 'unmount' }); });
})();
`
