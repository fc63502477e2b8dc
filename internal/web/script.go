package web

// themeSyncScript reports the browser's prefers-color-scheme to the server
// and applies every state pushed on /theme/events to the document.
const themeSyncScript = `(function(){
  var root=document.documentElement;
  var media=window.matchMedia('(prefers-color-scheme: dark)');

  function report(){
    fetch('/theme/ambient',{
      method:'POST',
      headers:{'Content-Type':'application/json'},
      body:JSON.stringify({theme:media.matches?'dark':'light'})
    }).catch(function(){});
  }

  function pick(el, t){
    return el.getAttribute(t==='dark'?'data-dark':'data-light');
  }

  function apply(state){
    var t=state.theme==='dark'?'dark':'light';
    root.setAttribute('data-theme', t);
    var logo=document.getElementById('app-logo');
    if(logo){ logo.setAttribute('src', pick(logo, t)); }
    var meta=document.querySelector('meta[name="theme-color"]');
    if(meta){ meta.setAttribute('content', pick(meta, t)); }
    var scheme=document.querySelector('meta[name="color-scheme"]');
    if(scheme){ scheme.setAttribute('content', t); }
    var label=document.getElementById('current-theme');
    if(label){ label.textContent=t; }
  }

  report();
  if(media.addEventListener){
    media.addEventListener('change', report);
  } else if(media.addListener){
    media.addListener(report);
  }

  if(window.EventSource){
    var events=new EventSource('/theme/events');
    events.addEventListener('theme', function(e){
      try { apply(JSON.parse(e.data)); } catch (_) {}
    });
  }
})();`
